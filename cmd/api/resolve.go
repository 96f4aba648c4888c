package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/configproxy/core/internal/models"
	"github.com/configproxy/core/internal/parser"
	"github.com/configproxy/core/internal/resolver"
	"github.com/configproxy/core/internal/service"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type resolveOptions struct {
	input  string
	family string
	output string
}

func newResolveCommand() *cobra.Command {
	var opts resolveOptions
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a snapshot file without contacting the component server",
		Long: `Reads a snapshot holding both the configuration type graph and the
component index, and prints the root configurations. With --family only the
family and icon of the given configuration type are printed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd.OutOrStdout(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.input, "input", "i", "", "Snapshot file (.json, .yaml or .yml), - for stdin")
	flags.StringVar(&opts.family, "family", "", "Print the family and icon of this configuration type")
	flags.StringVarP(&opts.output, "output", "o", "json", "Output format (json or yaml)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runResolve(w io.Writer, opts resolveOptions) error {
	if opts.output != "json" && opts.output != "yaml" {
		return errors.Errorf("unknown output format %q", opts.output)
	}

	snapshot, err := readSnapshot(opts.input)
	if err != nil {
		return err
	}

	var result any
	if opts.family != "" {
		family, err := resolver.FamilyOf(opts.family, &snapshot.Configurations)
		if err != nil {
			return err
		}
		icon, err := resolver.FindIcon(family, &snapshot.Components)
		if err != nil {
			return err
		}
		result = service.FamilyIcon{FamilyID: family.ID, Icon: icon}
	} else {
		nodes, err := resolver.RootConfigurations(&snapshot.Configurations, &snapshot.Components)
		if err != nil {
			return err
		}
		result = nodes
	}

	if opts.output == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return errors.Wrap(enc.Encode(result), "write yaml")
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(result), "write json")
}

func readSnapshot(input string) (*models.Snapshot, error) {
	var (
		data []byte
		err  error
	)
	if input == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(input)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", input)
	}
	return parser.ParseSnapshot(data, parser.FormatFromPath(input))
}
