package output

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"grocerytracker/internal/confirm"

	"github.com/jedib0t/go-pretty/v6/table"
)

// RenderTable prints a pretty table to stdout
func RenderTable(headers []string, rows [][]interface{}, footer ...interface{}) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)

	headerRow := table.Row{}
	for _, h := range headers {
		headerRow = append(headerRow, h)
	}
	t.AppendHeader(headerRow)

	for _, row := range rows {
		t.AppendRow(table.Row(row))
	}
	if len(footer) > 0 {
		t.AppendFooter(table.Row(footer))
	}

	t.Render()
}

// ConfirmDelete runs del for target through a confirmation dialog. Unless
// skipPrompt is set the user must answer "y" on in, anything else cancels.
func ConfirmDelete(ctx context.Context, in io.Reader, out io.Writer, target string, skipPrompt bool, del confirm.DeleteFunc) (bool, error) {
	dialog := confirm.NewDialog(del)
	if err := dialog.Request(target); err != nil {
		return false, err
	}

	if !skipPrompt {
		fmt.Fprintf(out, "Delete %s? [y/N]: ", target)
		answer, _ := bufio.NewReader(in).ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			if err := dialog.Cancel(); err != nil {
				return false, err
			}
			return false, nil
		}
	}

	if err := dialog.Confirm(ctx); err != nil {
		return false, err
	}
	return true, nil
}
