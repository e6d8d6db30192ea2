// Package report renders consensus results for people (aligned text) and
// for programs (JSON).
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ahrav/go-ballot/internal/domain"
	"github.com/ahrav/go-ballot/internal/ports"
)

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// ErrUnknownFormat is returned for an unsupported output format.
var ErrUnknownFormat = ports.ErrUnsupportedFormat

// undecided marks a node no candidate offered evidence for.
const undecided = "-"

// Options controls what is rendered.
type Options struct {
	// Format is FormatTable (default) or FormatJSON.
	Format string
	// Scores adds the full score table.
	Scores bool
	// Candidate restricts winners and scores to one candidate. It is
	// resolved with ResolveCandidate.
	Candidate string
}

// Write renders result to w according to opts.
func Write(w io.Writer, result *domain.Result, opts Options) error {
	if result == nil {
		return errors.New("nil result")
	}

	if opts.Candidate != "" {
		name, err := ResolveCandidate(result.Table.Candidates(), opts.Candidate)
		if err != nil {
			return err
		}
		opts.Candidate = name
	}

	switch opts.Format {
	case "", FormatTable:
		return writeTable(w, result, opts)
	case FormatJSON:
		return writeJSON(w, result, opts)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, opts.Format)
	}
}

func writeTable(w io.Writer, result *domain.Result, opts Options) error {
	fmt.Fprintf(w, "run %s\n\n", result.RunID)

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "NODE\tWINNERS")
	for i := range result.Winners.Len() {
		node, winners := result.Winners.At(i)
		if opts.Candidate != "" && !slices.Contains(winners, opts.Candidate) {
			continue
		}
		cell := undecided
		if len(winners) > 0 {
			cell = strings.Join(winners, ", ")
		}
		fmt.Fprintf(tw, "%s\t%s\n", node, cell)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if opts.Scores {
		fmt.Fprintln(w)
		if err := writeScores(w, result.Table, opts.Candidate); err != nil {
			return err
		}
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tCANDIDATE\tTOTAL\tOUTRIGHT\tSHARED")
	for i, t := range result.Ranking {
		if opts.Candidate != "" && t.Candidate != opts.Candidate {
			continue
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\n", i+1, t.Candidate, t.Total(), t.Outright, t.Shared)
	}
	return tw.Flush()
}

func writeScores(w io.Writer, table domain.ScoreTable, only string) error {
	columns := scoreColumns(table, only)
	candidates := table.Candidates()

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	header := []string{"NODE"}
	for _, c := range columns {
		header = append(header, candidates[c])
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for i, node := range table.Nodes() {
		row := table.Row(i)
		cells := []string{string(node)}
		for _, c := range columns {
			cells = append(cells, strconv.Itoa(row[c]))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

// scoreColumns returns the column indexes to render.
func scoreColumns(table domain.ScoreTable, only string) []int {
	candidates := table.Candidates()
	if only != "" {
		return []int{slices.Index(candidates, only)}
	}
	cols := make([]int, len(candidates))
	for i := range cols {
		cols[i] = i
	}
	return cols
}

type jsonReport struct {
	RunID            string             `json:"run_id"`
	GraphFingerprint string             `json:"graph_fingerprint"`
	Timestamp        time.Time          `json:"timestamp"`
	Winners          []jsonNodeWinners  `json:"winners"`
	Scores           *jsonScoreTable    `json:"scores,omitempty"`
	Ranking          []jsonRankingEntry `json:"ranking"`
}

type jsonNodeWinners struct {
	Node    string   `json:"node"`
	Winners []string `json:"winners"`
}

type jsonScoreTable struct {
	Candidates []string       `json:"candidates"`
	Rows       []jsonScoreRow `json:"rows"`
}

type jsonScoreRow struct {
	Node   string `json:"node"`
	Scores []int  `json:"scores"`
}

type jsonRankingEntry struct {
	Candidate string `json:"candidate"`
	Total     int    `json:"total"`
	Outright  int    `json:"outright"`
	Shared    int    `json:"shared"`
}

func writeJSON(w io.Writer, result *domain.Result, opts Options) error {
	doc := jsonReport{
		RunID:            result.RunID,
		GraphFingerprint: result.GraphFingerprint,
		Timestamp:        result.Timestamp.UTC(),
		Winners:          make([]jsonNodeWinners, 0, result.Winners.Len()),
		Ranking:          make([]jsonRankingEntry, 0, len(result.Ranking)),
	}

	for i := range result.Winners.Len() {
		node, winners := result.Winners.At(i)
		if opts.Candidate != "" && !slices.Contains(winners, opts.Candidate) {
			continue
		}
		if winners == nil {
			winners = []string{}
		}
		doc.Winners = append(doc.Winners, jsonNodeWinners{Node: string(node), Winners: winners})
	}

	if opts.Scores {
		columns := scoreColumns(result.Table, opts.Candidate)
		candidates := result.Table.Candidates()
		scores := &jsonScoreTable{Candidates: make([]string, 0, len(columns))}
		for _, c := range columns {
			scores.Candidates = append(scores.Candidates, candidates[c])
		}
		for i, node := range result.Table.Nodes() {
			row := result.Table.Row(i)
			values := make([]int, 0, len(columns))
			for _, c := range columns {
				values = append(values, row[c])
			}
			scores.Rows = append(scores.Rows, jsonScoreRow{Node: string(node), Scores: values})
		}
		doc.Scores = scores
	}

	for _, t := range result.Ranking {
		if opts.Candidate != "" && t.Candidate != opts.Candidate {
			continue
		}
		doc.Ranking = append(doc.Ranking, jsonRankingEntry{
			Candidate: t.Candidate,
			Total:     t.Total(),
			Outright:  t.Outright,
			Shared:    t.Shared,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
