package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"vidtrack/internal/model"
)

var schemaTargets = map[string]any{
	"results":      &model.ResultsDocument{},
	"job":          &model.JobRecord{},
	"notification": &model.CompletionNotification{},
}

var schemaCommand = &cobra.Command{
	Use:       "schema [results|job|notification]",
	Short:     "Print the JSON schema of a stored or exchanged document",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"results", "job", "notification"},
	RunE: func(cmd *cobra.Command, args []string) error {
		name := "results"
		if len(args) == 1 {
			name = args[0]
		}
		target, ok := schemaTargets[name]
		if !ok {
			return fmt.Errorf("unknown document %q", name)
		}

		r := &jsonschema.Reflector{DoNotReference: true}
		data, err := json.MarshalIndent(r.Reflect(target), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}
