package weather

import (
	"fmt"
	"net/http"
	"net/url"

	"grocerytracker/cmd/grocery/config"
	"grocerytracker/cmd/grocery/output"
	"grocerytracker/internal/models"

	"github.com/spf13/cobra"
)

// InitWeather registers the weather command on the root command.
func InitWeather(rootCmd *cobra.Command) {
	rootCmd.AddCommand(weatherCmd())
}

func weatherCmd() *cobra.Command {
	var city string

	cmd := &cobra.Command{
		Use:   "weather",
		Short: "Show the current weather",
		Long:  "Show the current weather for a city, Raleigh when none is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/weather"
			if city != "" {
				path += "?" + url.Values{"city": {city}}.Encode()
			}

			var resp struct {
				Data models.Weather `json:"data"`
			}
			if err := config.CallJSON(http.MethodGet, path, nil, &resp, true); err != nil {
				return fmt.Errorf("failed to load weather: %w", err)
			}

			source := "live"
			if resp.Data.Cached {
				source = "cached"
			}
			output.RenderTable(
				[]string{"City", "Temperature (°F)", "Condition", "Source"},
				[][]interface{}{{resp.Data.City, fmt.Sprintf("%.0f", resp.Data.Temperature), resp.Data.Condition, source}},
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&city, "city", "", "City name")
	return cmd
}
