package pathdiff

import (
	"io"

	"github.com/goccy/go-json"
)

// WriteJSON exports a diff along with the names of the compared inputs.
func WriteJSON(w io.Writer, d Diff, nameA, nameB string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		FileA string `json:"file_a"`
		FileB string `json:"file_b"`
		Diff
	}{FileA: nameA, FileB: nameB, Diff: d})
}
