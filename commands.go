package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/greatbody/charlock/internal/transcoder"
)

var (
	jsonOutput  bool
	recursive   bool
	hint        string
	convertFrom string
	convertTo   string
)

var detectCmd = &cobra.Command{
	Use:   "detect <path>...",
	Short: "Detect the encoding of files",
	Long:  "Detect the encoding of each file. Files directly inside a directory argument are filtered by the configured extensions; -r descends into subdirectories.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, root := range args {
			err := a.filter.Walk(root, recursive, func(path string) error {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				res, err := a.detector.Detect(data, hint)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				return printResult(out, path, res)
			})
			if err != nil {
				return err
			}
		}
		return nil
	},
}

var detectAllCmd = &cobra.Command{
	Use:   "detect-all <file>",
	Short: "List every candidate encoding of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		results, err := a.detector.DetectAll(data, hint)
		if err != nil {
			return err
		}
		if jsonOutput {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(results)
		}
		for _, res := range results {
			if err := printResult(cmd.OutOrStdout(), args[0], res); err != nil {
				return err
			}
		}
		return nil
	},
}

var convertCmd = &cobra.Command{
	Use:   "convert <in> [out]",
	Short: "Convert a file between encodings",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		from := convertFrom
		if from == "" {
			res, err := a.detector.Detect(data, "")
			if err != nil {
				return err
			}
			from = res.Encoding
			a.logger.Info("detected source encoding", zap.String("encoding", from), zap.Int("confidence", res.Confidence))
		}
		converted, err := a.converter.Convert(data, from, convertTo)
		if err != nil {
			return err
		}
		return writeOutput(cmd, args, converted.Data)
	},
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize <in> [out]",
	Short: "Convert a file of unknown encoding to the configured target",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		r, err := a.normalizer.NormalizeReader(f)
		if err != nil {
			return err
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		if target := a.cfg.Normalize.Target; target != "" && !strings.EqualFold(target, "UTF-8") {
			converted, err := a.converter.Convert(data, "UTF-8", target)
			if err != nil {
				return err
			}
			data = converted.Data
		}
		return writeOutput(cmd, args, data)
	},
}

var encodingsCmd = &cobra.Command{
	Use:   "encodings",
	Short: "List the encodings the detector recognizes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := a.detector.SupportedEncodings()
		if err != nil {
			return err
		}
		if jsonOutput {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(names)
		}
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{detectCmd, detectAllCmd} {
		cmd.Flags().StringVar(&hint, "hint", "", "Encoding hint (accepted, currently unused by the detector)")
	}
	for _, cmd := range []*cobra.Command{detectCmd, detectAllCmd, encodingsCmd} {
		cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
	}

	detectCmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Descend into subdirectories")

	convertCmd.Flags().StringVar(&convertFrom, "from", "", "Source encoding (detected when empty)")
	convertCmd.Flags().StringVar(&convertTo, "to", "UTF-8", "Target encoding")
}

func printResult(w io.Writer, path string, res transcoder.DetectionResult) error {
	if jsonOutput {
		return json.NewEncoder(w).Encode(struct {
			Path string `json:"path"`
			transcoder.DetectionResult
		}{path, res})
	}
	_, err := fmt.Fprintf(w, "%s: %s (confidence %d, %s, canonical %s", path, res.Encoding, res.Confidence, res.Classification, res.CanonicalName)
	if err != nil {
		return err
	}
	if res.Language != "" {
		_, err = fmt.Fprintf(w, ", language %s)\n", res.Language)
	} else {
		_, err = fmt.Fprintln(w, ")")
	}
	return err
}

func writeOutput(cmd *cobra.Command, args []string, data []byte) error {
	if len(args) < 2 {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(args[1], data, 0o644)
}
