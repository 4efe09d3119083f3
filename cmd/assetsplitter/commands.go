package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/mmynk/assetsplitter/internal/codec"
	"github.com/mmynk/assetsplitter/internal/models"
	"github.com/mmynk/assetsplitter/internal/report"
	"github.com/mmynk/assetsplitter/internal/session"
)

func newInitCmd(a *app) *cobra.Command {
	var partyA, partyB string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Start a new division between two parties",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, false, func(ctx context.Context, s *session.Session) error {
				if err := s.Start(partyA, partyB); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Started division between %s and %s\n", partyA, partyB)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&partyA, "party-a", "", "Name of the first party")
	cmd.Flags().StringVar(&partyB, "party-b", "", "Name of the second party")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show assets and totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, true, func(ctx context.Context, s *session.Session) error {
				md := report.Markdown(s.Snapshot())
				if plain {
					_, err := io.WriteString(cmd.OutOrStdout(), md)
					return err
				}
				r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
				if err != nil {
					return fmt.Errorf("failed to create renderer: %w", err)
				}
				out, err := r.Render(md)
				if err != nil {
					return fmt.Errorf("failed to render summary: %w", err)
				}
				_, err = io.WriteString(cmd.OutOrStdout(), out)
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "Print raw Markdown instead of styled output")
	return cmd
}

func newAddCmd(a *app) *cobra.Command {
	var name string
	var value float64
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an asset, split 50/50",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFinite("value", value); err != nil {
				return err
			}
			return a.run(cmd, true, func(ctx context.Context, s *session.Session) error {
				asset := s.AddAsset()
				asset.Name = name
				asset.Value = value
				s.UpdateAsset(asset)
				fmt.Fprintln(cmd.OutOrStdout(), asset.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Asset name")
	cmd.Flags().Float64Var(&value, "value", 0, "Asset value")
	return cmd
}

func newSetCmd(a *app) *cobra.Command {
	var (
		name       string
		value      float64
		pctA, pctB float64
		allocation string
	)
	cmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Edit an asset",
		Long: `Edit an asset's name, value or allocation.

--type switches between split, partyA and partyB and resets the percentages.
--a or --b sets one party's share of a split; the other party gets the rest.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			flags := cmd.Flags()
			if flags.Changed("a") && flags.Changed("b") {
				return errors.New("set only one of --a and --b; the other party receives the remainder")
			}
			for _, f := range []struct {
				name string
				v    float64
			}{{"value", value}, {"a", pctA}, {"b", pctB}} {
				if err := requireFinite(f.name, f.v); err != nil {
					return err
				}
			}

			return a.run(cmd, true, func(ctx context.Context, s *session.Session) error {
				asset, ok := s.Asset(id)
				if !ok {
					return fmt.Errorf("%w: %s", session.ErrAssetNotFound, id)
				}

				if flags.Changed("type") {
					t := models.AllocationType(allocation)
					if !t.Valid() {
						return fmt.Errorf("unknown allocation type %q; use split, partyA or partyB", allocation)
					}
					s.SetAllocationType(asset, t)
				}
				if flags.Changed("name") {
					s.SetName(id, name)
				}
				if flags.Changed("value") {
					s.SetValue(id, value)
				}
				if flags.Changed("a") {
					s.SetPercentage(id, models.PartyA, pctA)
				}
				if flags.Changed("b") {
					s.SetPercentage(id, models.PartyB, pctB)
				}

				asset, _ = s.Asset(id)
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s\n", asset.Name, report.FormatUSD(asset.Value), report.AllocationLabel(s.Snapshot(), asset))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().Float64Var(&value, "value", 0, "New value")
	cmd.Flags().Float64Var(&pctA, "a", 0, "Party A percentage")
	cmd.Flags().Float64Var(&pctB, "b", 0, "Party B percentage")
	cmd.Flags().StringVar(&allocation, "type", "", "Allocation type: split, partyA or partyB")
	return cmd
}

func newRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, true, func(ctx context.Context, s *session.Session) error {
				s.DeleteAsset(args[0])
				return nil
			})
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all data as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, true, func(ctx context.Context, s *session.Session) error {
				data, err := s.Export()
				if err != nil {
					return err
				}
				return writeOutput(cmd, output, data)
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", codec.ExportFilename, `Output file, or "-" for stdout`)
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all data with an exported JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read import file: %w", err)
			}
			return a.run(cmd, false, func(ctx context.Context, s *session.Session) error {
				if err := s.ImportFile(args[0], data); err != nil {
					return fmt.Errorf("Invalid JSON file format: %w", err)
				}
				return nil
			})
		},
	}
}

func newReportCmd(a *app) *cobra.Command {
	var kind, output string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a PDF report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := report.ParseKind(kind)
			if err != nil {
				return err
			}
			if output == "" {
				output = k.Filename()
			}
			return a.run(cmd, true, func(ctx context.Context, s *session.Session) error {
				var buf bytes.Buffer
				if err := report.Write(&buf, k, s.Snapshot()); err != nil {
					return err
				}
				return writeOutput(cmd, output, buf.Bytes())
			})
		},
	}
	cmd.Flags().StringVar(&kind, "kind", string(report.KindAgreement), "Report kind: summary or agreement")
	cmd.Flags().StringVarP(&output, "output", "o", "", `Output file (default depends on kind), or "-" for stdout`)
	return cmd
}

func newQueryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "query <jsonpath>",
		Short: "Evaluate a JSONPath expression against the export document",
		Example: `  assetsplitter query '$.assets[*].name'
  assetsplitter query '$.assets[?(@.allocationType == "split")].value'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, true, func(ctx context.Context, s *session.Session) error {
				result, err := codec.Query(s.Snapshot(), args[0])
				if err != nil {
					return err
				}
				out, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode result: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			})
		},
	}
}

func newResetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Delete all saved data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, false, func(ctx context.Context, s *session.Session) error {
				s.Reset()
				if err := a.autosaver.Discard(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Saved data deleted")
				return nil
			})
		},
	}
}

// requireFinite rejects NaN and infinities, which cannot be stored as JSON.
func requireFinite(flag string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("--%s must be a finite number, got %v", flag, v)
	}
	return nil
}

// writeOutput writes data to path, or to stdout when path is "-".
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
