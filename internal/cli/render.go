package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/tphakala/go-zia"
)

var defaultTableStyle = table.Style{
	Name: "zia",
	Box: table.BoxStyle{
		BottomLeft:       "└",
		BottomRight:      "┘",
		BottomSeparator:  "",
		EmptySeparator:   text.RepeatAndTrim(" ", text.RuneCount("+")),
		Left:             "│",
		LeftSeparator:    "",
		MiddleHorizontal: "─",
		MiddleSeparator:  "",
		MiddleVertical:   "",
		PaddingLeft:      " ",
		PaddingRight:     " ",
		PageSeparator:    "\n",
		Right:            "│",
		RightSeparator:   "",
		TopLeft:          "┌",
		TopRight:         "┐",
		TopSeparator:     "",
		UnfinishedRow:    " ...",
	},
	Color: table.ColorOptionsDefault,
	Format: table.FormatOptions{
		Footer: text.FormatDefault,
		Header: text.FormatDefault,
		Row:    text.FormatDefault,
	},
	HTML: table.DefaultHTMLOptions,
	Options: table.Options{
		DrawBorder:      false,
		SeparateColumns: false,
		SeparateFooter:  true,
		SeparateHeader:  true,
		SeparateRows:    false,
	},
	Title: table.TitleOptionsDefault,
}

func renderJSON(w io.Writer, val any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(val)
}

func renderTable(w io.Writer, header table.Row, rows []table.Row, footer string) {
	t := table.NewWriter()
	t.SetStyle(defaultTableStyle)

	t.AppendHeader(header)
	for _, row := range rows {
		// the order of values must match the order of the header
		t.AppendRow(row)
	}
	if footer != "" {
		t.AppendFooter(table.Row{footer})
	}

	fmt.Fprintln(w, t.Render())
}

func renderUsers(w io.Writer, users []*zia.User) {
	if len(users) == 0 {
		fmt.Fprintln(w, "Cannot find any users")
		return
	}

	rows := make([]table.Row, 0, len(users))
	for _, u := range users {
		dept := ""
		if u.Department != nil {
			dept = u.Department.Name
		}
		rows = append(rows, table.Row{u.ID, u.Name, u.Email, dept, groupNames(u.Groups)})
	}
	renderTable(w, table.Row{"ID", "Name", "Email", "Department", "Groups"}, rows,
		fmt.Sprintf("%d users in total", len(users)))
}

func renderLocations(w io.Writer, locations []*zia.Location) {
	if len(locations) == 0 {
		fmt.Fprintln(w, "Cannot find any locations")
		return
	}

	rows := make([]table.Row, 0, len(locations))
	for _, l := range locations {
		rows = append(rows, table.Row{l.ID, l.Name, l.ParentID, strings.Join(l.IPAddresses, ", "), l.SSLScanEnabled, l.AuthRequired})
	}
	renderTable(w, table.Row{"ID", "Name", "Parent", "IP Addresses", "SSL Scan", "Auth"}, rows,
		fmt.Sprintf("%d locations in total", len(locations)))
}

func renderLocationsLite(w io.Writer, locations []*zia.LocationLite) {
	if len(locations) == 0 {
		fmt.Fprintln(w, "Cannot find any locations")
		return
	}

	rows := make([]table.Row, 0, len(locations))
	for _, l := range locations {
		rows = append(rows, table.Row{l.ID, l.Name, l.ParentID, l.TZ})
	}
	renderTable(w, table.Row{"ID", "Name", "Parent", "Time Zone"}, rows,
		fmt.Sprintf("%d locations in total", len(locations)))
}

func groupNames(groups []zia.Group) string {
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.Name)
	}
	return strings.Join(names, ", ")
}
