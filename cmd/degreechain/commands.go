package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thanhnp/degreechain/internal/ledger"
	"github.com/thanhnp/degreechain/internal/models"
	"github.com/thanhnp/degreechain/internal/qr"
)

// withLedger opens the ledger for the duration of fn
func (a *app) withLedger(fn func(l *ledger.Ledger) error) error {
	l, err := a.openLedger(nil)
	if err != nil {
		return err
	}
	defer l.Close()
	return fn(l)
}

func (a *app) addDegreeCmd() *cobra.Command {
	var data models.DegreeData
	var gpa string

	cmd := &cobra.Command{
		Use:   "add-degree",
		Short: "Add a new degree transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			data.GPA = models.GPA(gpa)
			return a.withLedger(func(l *ledger.Ledger) error {
				id, err := l.SubmitDegree(data)
				if err != nil {
					return err
				}
				pterm.Success.Println("Transaction added")
				pterm.Info.Printfln("Transaction ID: %s", id)
				pterm.Info.Printfln("Document hash:  %s", data.DocumentHash())
				pterm.Info.Println("Status: pending (needs mining)")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&data.StudentID, "nim", "", "Student id")
	cmd.Flags().StringVar(&data.Name, "name", "", "Student name")
	cmd.Flags().StringVar(&data.Degree, "degree", "", "Degree title")
	cmd.Flags().StringVar(&data.Major, "major", "", "Major")
	cmd.Flags().StringVar(&gpa, "gpa", "", "GPA (0.0 to 4.0)")
	cmd.Flags().StringVar(&data.GraduationDate, "grad-date", "", "Graduation date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&data.Issuer, "issuer", "", "Issuing authority (default \""+models.DefaultIssuer+"\")")
	for _, name := range []string{"nim", "name", "degree", "major", "gpa", "grad-date"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (a *app) addBulkCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "add-bulk",
		Short: "Add degree transactions from a JSON or YAML file holding an array of students",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := readBulkFile(file)
			if err != nil {
				return err
			}
			return a.withLedger(func(l *ledger.Ledger) error {
				results := l.SubmitBulkReport(entries)
				renderBulkResults(results)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Path to a JSON (or .yaml/.yml) file containing an array of student objects")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readBulkFile(path string) ([]models.DegreeData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bulk file: %w", err)
	}
	var entries []models.DegreeData
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("bulk file must hold a YAML list of student objects: %w", err)
		}
	default:
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("bulk file must hold a JSON array of student objects: %w", err)
		}
	}
	return entries, nil
}

func (a *app) mineCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "mine",
		Short: "Mine pending transactions into a new block",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("timeout") {
				timeout = a.cfg.Ledger.MineTimeout
			}
			return a.withLedger(func(l *ledger.Ledger) error {
				ctx := cmd.Context()
				if timeout > 0 {
					var cancel context.CancelFunc
					ctx, cancel = context.WithTimeout(ctx, timeout)
					defer cancel()
				}

				spinner, _ := pterm.DefaultSpinner.Start(fmt.Sprintf("Mining at difficulty %d ...", l.Difficulty()))
				res, err := l.MinePending(ctx)
				if err != nil {
					spinner.Fail(err.Error())
					if errors.Is(err, ledger.ErrEmptyPending) {
						return nil
					}
					return err
				}
				spinner.Success(fmt.Sprintf("Block #%d sealed in %s", res.BlockIndex, res.Elapsed.Round(time.Millisecond)))
				renderMineResult(res)
				return nil
			})
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Give up mining after this long (0 means no limit)")
	return cmd
}

func (a *app) verifyCmd() *cobra.Command {
	var nim, hash string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a degree against the sealed chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(func(l *ledger.Ledger) error {
				renderVerification(l.VerifyDegree(hash, nim))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&nim, "nim", "", "Student id")
	cmd.Flags().StringVar(&hash, "hash", "", "Document hash")
	_ = cmd.MarkFlagRequired("nim")
	_ = cmd.MarkFlagRequired("hash")
	return cmd
}

func (a *app) studentInfoCmd() *cobra.Command {
	var nim string

	cmd := &cobra.Command{
		Use:   "student-info",
		Short: "List a student's sealed degrees",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(func(l *ledger.Ledger) error {
				renderStudentDegrees(nim, l.StudentDegrees(nim))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&nim, "nim", "", "Student id")
	_ = cmd.MarkFlagRequired("nim")
	return cmd
}

func (a *app) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show blockchain information",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(func(l *ledger.Ledger) error {
				renderSummary(l.Summary())
				return nil
			})
		},
	}
}

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate blockchain integrity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(func(l *ledger.Ledger) error {
				res := l.ValidateChain()
				renderValidity(res)
				if !res.Valid {
					return fmt.Errorf("chain invalid at block %d: %s", res.BlockIndex, res.Violation)
				}
				return nil
			})
		},
	}
}

func (a *app) displayCmd() *cobra.Command {
	var detailed bool

	cmd := &cobra.Command{
		Use:   "display",
		Short: "Display the blockchain",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(func(l *ledger.Ledger) error {
				blocks := l.Blocks()
				if detailed {
					renderBlocksDetailed(blocks)
				} else {
					renderBlocksTable(blocks)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&detailed, "detailed", false, "Show every block and transaction")
	return cmd
}

func (a *app) generateQRCmd() *cobra.Command {
	var nim, outputDir string

	cmd := &cobra.Command{
		Use:   "generate-qr",
		Short: "Generate a verification QR code for a student's latest degree",
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputDir == "" {
				outputDir = a.cfg.QR.OutputDir
			}
			return a.withLedger(func(l *ledger.Ledger) error {
				record, ok := l.LatestDegree(nim)
				if !ok {
					return fmt.Errorf("no sealed degree found for student %s", nim)
				}
				payload := qr.NewPayload(record, a.cfg.QR.VerificationURL, time.Now().UTC())
				path, err := qr.WriteFile(payload, a.cfg.QR.Size, outputDir)
				if err != nil {
					return err
				}
				pterm.Success.Printfln("QR code for student %s written to %s", nim, path)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&nim, "nim", "", "Student id")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for the PNG file (default from config)")
	_ = cmd.MarkFlagRequired("nim")
	return cmd
}
