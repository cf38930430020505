package main

import (
	"bufio"
	"encoding/csv"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/screening-service/internal/classifier"
	"github.com/SAP-F-2025/screening-service/internal/models"
	"github.com/SAP-F-2025/screening-service/internal/predictor"
)

// The trainer fits the risk classifier offline from a labeled dataset and
// writes the artifact the service loads at startup. With -interactive it
// additionally answers ad-hoc predictions from manually entered scores.
func main() {
	var (
		dataPath    = flag.String("data", "dyslexia_data.csv", "labeled dataset (.csv or .xlsx)")
		outPath     = flag.String("out", "model.json", "output artifact path")
		seed        = flag.Uint64("seed", 10, "random seed for the split and the forest")
		interactive = flag.Bool("interactive", false, "prompt for scores and predict after training")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	features, labels, err := readDataset(*dataPath)
	if err != nil {
		logger.Error("Failed to read dataset", "path", *dataPath, "error", err)
		os.Exit(1)
	}
	logger.Info("Dataset loaded", "path", *dataPath, "samples", len(features))

	cfg := classifier.DefaultTrainConfig()
	cfg.Seed = *seed

	result, err := classifier.Train(features, labels, cfg)
	if err != nil {
		logger.Error("Training failed", "error", err)
		os.Exit(1)
	}

	for _, trees := range cfg.TreeCounts {
		fmt.Printf("trees=%-5d holdout accuracy=%.4f\n", trees, result.GridAccuracy[trees])
	}
	fmt.Printf("selected trees=%d accuracy=%.4f\n", result.BestTrees, result.Accuracy)

	cols := models.FeatureColumns()
	artifact := classifier.NewArtifact(cols[:], result)
	if err := artifact.Save(*outPath); err != nil {
		logger.Error("Failed to save artifact", "path", *outPath, "error", err)
		os.Exit(1)
	}
	logger.Info("Artifact saved", "path", *outPath, "trees", result.BestTrees)

	if *interactive {
		runInteractive(artifact, logger)
	}
}

// readDataset parses a labeled dataset: six feature columns in training
// order followed by an integer class label, with a header row.
func readDataset(path string) ([][]float64, []int, error) {
	var rows [][]string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		rows, err = readExcelRows(path)
	default:
		rows, err = readCSVRows(path)
	}
	if err != nil {
		return nil, nil, err
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("dataset has no data rows")
	}

	cols := models.FeatureColumns()
	header := rows[0]
	if len(header) < len(cols)+1 {
		return nil, nil, fmt.Errorf("expected %d columns (features plus label), got %d", len(cols)+1, len(header))
	}
	for i, want := range cols {
		if !strings.EqualFold(strings.TrimSpace(header[i]), want) {
			return nil, nil, fmt.Errorf("column %d is %q, want %q", i, header[i], want)
		}
	}

	features := make([][]float64, 0, len(rows)-1)
	labels := make([]int, 0, len(rows)-1)
	for rowNum, row := range rows[1:] {
		if len(row) < len(cols)+1 {
			return nil, nil, fmt.Errorf("row %d has %d columns, want %d", rowNum+2, len(row), len(cols)+1)
		}
		sample := make([]float64, len(cols))
		for i := range cols {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("row %d column %d: %w", rowNum+2, i, err)
			}
			sample[i] = v
		}
		label, err := strconv.Atoi(strings.TrimSpace(row[len(cols)]))
		if err != nil {
			return nil, nil, fmt.Errorf("row %d label: %w", rowNum+2, err)
		}
		features = append(features, sample)
		labels = append(labels, label)
	}
	return features, labels, nil
}

func readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	return reader.ReadAll()
}

func readExcelRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

// runInteractive prompts for the six scores on stdin and prints the risk
// assessment, repeating until EOF.
func runInteractive(artifact *classifier.Artifact, logger *slog.Logger) {
	pred := predictor.FromArtifact(artifact, logger)
	cols := models.FeatureColumns()
	scanner := bufio.NewScanner(os.Stdin)

	for {
		values := [6]float64{}
		for i := 0; i < len(cols); {
			fmt.Printf("%s [0..1]: ", cols[i])
			if !scanner.Scan() {
				return
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				return
			}
			v, err := strconv.ParseFloat(line, 64)
			if err != nil || v < 0 || v > 1 {
				fmt.Println("please enter a number between 0 and 1")
				continue
			}
			values[i] = v
			i++
		}

		vector := models.FeatureVector{
			LanguageVocab:        values[0],
			Memory:               values[1],
			Speed:                values[2],
			VisualDiscrimination: values[3],
			AudioDiscrimination:  values[4],
			SurveyScore:          values[5],
		}

		risk, err := pred.Predict(vector)
		if err != nil {
			fmt.Println("prediction failed:", err)
			continue
		}
		fmt.Println(risk.Description())
		fmt.Println()
	}
}
