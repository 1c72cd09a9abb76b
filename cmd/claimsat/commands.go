package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/claimsat/internal/claim"
	"github.com/claimsat/internal/disaster"
	"github.com/claimsat/internal/evidence"
	"github.com/claimsat/internal/models"
	"github.com/claimsat/internal/reunify"
	"github.com/claimsat/internal/service"
	"github.com/claimsat/internal/store"
)

func readJSONFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func ingestFiles(ingestor *evidence.Ingestor, claimID string, paths []string) ([]models.Evidence, error) {
	var result []models.Evidence
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		ev, err := ingestor.Ingest(evidence.Upload{
			ClaimID:    claimID,
			Filename:   path,
			ContentRef: path,
			Content:    f,
		})
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		result = append(result, ev)
	}
	return result, nil
}

// errEmbeddedEvidence rejects evidence records written into a claim file
var errEmbeddedEvidence = errors.New("evidence records in claim files are not accepted; pass the files with --evidence")

// createScoreCmd scores claim files without storing anything
func createScoreCmd(opts *rootOptions) *cobra.Command {
	var evidenceFiles []string
	var asJSON bool
	var workers int

	cmd := &cobra.Command{
		Use:   "score [claim.json...]",
		Short: "Score damage claims",
		Long: `Score claims read from JSON. With one claim, evidence files given with --evidence are
ingested and attached first. Several claims are scored in parallel.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 && len(evidenceFiles) > 0 {
				return fmt.Errorf("--evidence needs exactly one claim file")
			}

			cfg, err := loadEngineConfig(opts)
			if err != nil {
				return err
			}
			registry, err := loadRegistry(opts.disastersPath)
			if err != nil {
				return err
			}

			claims := make([]models.Claim, len(args))
			for i, path := range args {
				if err := readJSONFile(path, &claims[i]); err != nil {
					return err
				}
				if len(claims[i].Evidence) > 0 {
					return fmt.Errorf("%s: %w", path, errEmbeddedEvidence)
				}
			}

			ingestor := evidence.NewIngestor(evidence.NewHeuristicAnalyzer(nil), nil)
			attached, err := ingestFiles(ingestor, claims[0].ID, evidenceFiles)
			if err != nil {
				return err
			}
			claims[0].Evidence = attached

			svc := service.NewClaimService(store.NewMemStore(), registry, claim.NewScorerWithConfig(cfg.ClaimConfig(nil)), nil, nil)
			results, err := svc.PreviewBatch(runContext(cmd), claims, workers)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				if len(results) == 1 {
					return writeJSON(out, results[0])
				}
				return writeJSON(out, results)
			}
			for i, r := range results {
				if len(results) > 1 {
					fmt.Fprintf(out, "== %s\n", args[i])
				}
				fmt.Fprintf(out, "Overall: %.1f (%s)\n\n%s\n", r.Score.Overall, r.Status, r.Score.Explanation)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&evidenceFiles, "evidence", nil, "evidence files to attach (.jpg .png .webp .mp4 .mov .avi)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print scores as JSON")
	cmd.Flags().IntVar(&workers, "workers", 4, "claims scored in parallel")
	return cmd
}

// createMatchCmd runs the reunification engine over two JSON files
func createMatchCmd(opts *rootOptions) *cobra.Command {
	var minConfidence float64
	var workers int

	cmd := &cobra.Command{
		Use:   "match [missing.json] [survivors.json]",
		Short: "Match missing persons against survivors",
		Long:  `Score every missing person report against every survivor and print the matches at or above the confidence threshold.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadEngineConfig(opts)
			if err != nil {
				return err
			}

			var missing []models.MissingPerson
			if err := readJSONFile(args[0], &missing); err != nil {
				return err
			}
			var survivors []models.Survivor
			if err := readJSONFile(args[1], &survivors); err != nil {
				return err
			}

			engineCfg := cfg.ReunifyConfig(nil)
			if cmd.Flags().Changed("min-confidence") {
				engineCfg.MinConfidence = minConfidence
			}
			if workers <= 0 {
				workers = cfg.Reunify.Workers
			}

			engine := reunify.NewEngineWithConfig(engineCfg)
			results, err := engine.BatchMatch(cmd.Context(), missing, survivors, workers)
			if err != nil {
				return err
			}

			byMissing := make(map[string][]models.ReunifyMatch, len(missing))
			for i, mp := range missing {
				byMissing[mp.ID] = results[i]
			}
			return writeJSON(cmd.OutOrStdout(), byMissing)
		},
	}

	cmd.Flags().Float64Var(&minConfidence, "min-confidence", reunify.DefaultMinConfidence, "lowest confidence to report")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (engine config when zero)")
	return cmd
}

// createIngestCmd prints the evidence records for local files
func createIngestCmd() *cobra.Command {
	var claimID string

	cmd := &cobra.Command{
		Use:   "ingest [files...]",
		Short: "Hash, inspect and analyze evidence files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ingestor := evidence.NewIngestor(evidence.NewHeuristicAnalyzer(nil), nil)
			records, err := ingestFiles(ingestor, claimID, args)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), records)
		},
	}

	cmd.Flags().StringVar(&claimID, "claim", "", "claim ID to attach the evidence to")
	return cmd
}

// createDisastersCmd lists the disaster registry
func createDisastersCmd(opts *rootOptions) *cobra.Command {
	var activeOnly, asGeoJSON bool
	var near string
	var radiusKm float64

	cmd := &cobra.Command{
		Use:   "disasters",
		Short: "List known disasters",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := loadRegistry(opts.disastersPath)
			if err != nil {
				return err
			}

			disasters := registry.List()
			if activeOnly {
				disasters = registry.GetActive()
			}
			if near != "" {
				var p models.Point
				if _, err := fmt.Sscanf(near, "%f,%f", &p.Lat, &p.Lng); err != nil {
					return fmt.Errorf("--near expects lat,lng: %w", err)
				}
				disasters = disaster.Near(registry, p, radiusKm)
			}

			out := cmd.OutOrStdout()
			if asGeoJSON {
				data, err := disaster.ToGeoJSON(disasters)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			}

			for _, d := range disasters {
				fmt.Fprintf(out, "%-10s %-32s %-11s %-9s %-10s %s\n",
					d.ID, d.Name, d.Type, d.Severity, d.Status, d.StartDate.Format("2006-01-02"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&activeOnly, "active", false, "only active and monitoring disasters")
	cmd.Flags().BoolVar(&asGeoJSON, "geojson", false, "print a GeoJSON FeatureCollection")
	cmd.Flags().StringVar(&near, "near", "", "only disasters near lat,lng")
	cmd.Flags().Float64Var(&radiusKm, "radius", 50, "radius in km for --near")
	return cmd
}

// runContext returns the command context or a background context
func runContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func parseDialect(driver string) (store.Dialect, error) {
	switch strings.ToLower(driver) {
	case "postgres", "postgresql":
		return store.Postgres, nil
	case "mysql":
		return store.MySQL, nil
	}
	return "", fmt.Errorf("unsupported store driver %q", driver)
}
