package cli

import (
	"fmt"
	"io"

	jsonpkg "wechatkf-golang/refactor/internal/pkg/json"
)

func printJSON(w io.Writer, v any) error {
	data, err := jsonpkg.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
