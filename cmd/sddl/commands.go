package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/starford/sddl/internal/models"
	"github.com/starford/sddl/internal/sddl"
)

var errInvalid = errors.New("document has errors")

type parseFlags struct {
	all  bool
	vars bool
}

// parseFile parses the document at path, reports diagnostics on diag and
// writes either the canonical JSON or a variable table to out.
func parseFile(out, diag io.Writer, path string, f parseFlags) error {
	res := sddl.LoadAndParse(path, sddl.WithFailFast(!f.all))
	defer res.Release()

	for _, w := range res.Warnings {
		fmt.Fprintf(diag, "%s: warning: %s\n", path, w)
	}
	for _, e := range res.Errors {
		fmt.Fprintf(diag, "%s: error: %s\n", path, e)
	}
	if !res.OK {
		return fmt.Errorf("%s: %w", path, errInvalid)
	}

	if f.vars {
		return writeVariables(out, models.Flatten(path, res.Document()))
	}

	data, err := json.MarshalIndent(res.Document(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	_, err = fmt.Fprintf(out, "%s\n", data)
	return err
}

func writeVariables(out io.Writer, vars []models.Variable) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tDIR\tUNITS\tDESCRIPTION")
	for _, v := range vars {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", v.FullName, v.Datatype, v.Direction, v.Units, v.Description)
	}
	return tw.Flush()
}

// describeDeclaration prints the canonical form and fields of decl.
func describeDeclaration(out io.Writer, decl string) error {
	h, err := sddl.ParseDeclaration(decl)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "canonical\t%s\n", h.String())
	fmt.Fprintf(tw, "optionality\t%s\n", h.Optionality)
	fmt.Fprintf(tw, "direction\t%s\n", h.Direction)
	fmt.Fprintf(tw, "datatype\t%s\n", h.Datatype)
	fmt.Fprintf(tw, "name\t%s\n", h.Name)
	return tw.Flush()
}
