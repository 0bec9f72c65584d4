package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"donorprofile/internal/profile/adapter"
	"donorprofile/internal/profile/fetcher"
	"donorprofile/internal/profile/models"
	"donorprofile/pkg/domain"
)

// fetchOutput is what `fetch` prints.
type fetchOutput struct {
	UUID    string          `json:"uuid"`
	Status  string          `json:"status"`
	Profile *models.Profile `json:"profile,omitempty"`
}

func newRootCmd(out io.Writer) *cobra.Command {
	var (
		apiURL  = envOr("API_BASE_URL", "http://localhost:8000")
		timeout = 10 * time.Second
		format  = "json"
	)

	root := &cobra.Command{
		Use:           "profilectl",
		Short:         "Inspect donor profiles on the upstream profile API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&apiURL, "api-url", apiURL, "Base URL of the profile API (env API_BASE_URL)")
	root.PersistentFlags().DurationVar(&timeout, "timeout", timeout, "Request timeout")
	root.PersistentFlags().StringVarP(&format, "output", "o", format, "Output format: json|yaml")

	var answers models.AnswerSet
	fetchCmd := &cobra.Command{
		Use:   "fetch <uuid>",
		Short: "Fetch a profile, optionally with verification answers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.ParseProfileID(args[0])
			if err != nil {
				return fmt.Errorf("invalid uuid %q", args[0])
			}

			var withAnswers *models.AnswerSet
			if answers != (models.AnswerSet{}) {
				if answers.Gender == "" || answers.DateOfBirth == "" || answers.IDNumber == "" || answers.PhoneNumber == "" {
					return fmt.Errorf("--gender, --dob, --id-number and --phone must be given together")
				}
				withAnswers = &answers
			}

			client := fetcher.New(apiURL, fetcher.WithTimeout(timeout))
			result, err := client.Fetch(cmd.Context(), id.String(), withAnswers)
			if err != nil {
				return fmt.Errorf("fetch failed (%s): %w", fetcher.GetCategory(err), err)
			}

			res := fetchOutput{UUID: id.String(), Status: result.Status.String()}
			if result.Profile != nil {
				p := adapter.Normalize(*result.Profile)
				res.Profile = &p
			}
			return write(cmd.OutOrStdout(), format, res)
		},
	}
	fetchCmd.Flags().StringVar(&answers.Gender, "gender", "", "Gender code: male|female")
	fetchCmd.Flags().StringVar(&answers.DateOfBirth, "dob", "", "Date of birth, YYYY-MM-DD")
	fetchCmd.Flags().StringVar(&answers.IDNumber, "id-number", "", "National id number")
	fetchCmd.Flags().StringVar(&answers.PhoneNumber, "phone", "", "Phone number")

	birthdayCmd := &cobra.Command{
		Use:   "birthday <YYYY-MM-DD>",
		Short: "Print a date in the form the profile API expects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), adapter.FormatBirthdayForAPI(args[0]))
			return err
		},
	}

	root.AddCommand(fetchCmd, birthdayCmd)
	return root
}

func write(w io.Writer, format string, v any) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		// Round-trip through JSON so YAML keys match the API field names.
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic any
		if err := json.Unmarshal(b, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		enc.SetIndent(2)
		return enc.Encode(generic)
	default:
		return fmt.Errorf("unknown output format %q (want json|yaml)", format)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
