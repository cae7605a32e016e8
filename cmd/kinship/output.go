package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"kinship/internal/family/handler"
	"kinship/internal/family/models"
)

const (
	formatText = "text"
	formatJSON = "json"
)

func checkFormat(format string) error {
	if format != formatText && format != formatJSON {
		return fmt.Errorf("invalid format: %s (valid: text, json)", format)
	}
	return nil
}

// printJSON uses the HTTP response shapes so scripts see the API's format.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printDiscoveries(w io.Writer, results []models.DiscoveryResult, format string) error {
	if format == formatJSON {
		return printJSON(w, handler.FromDiscoveryResults(results))
	}
	if len(results) == 0 {
		fmt.Fprintln(w, "No suggestions found.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PERSON\tNAME\tRELATIONSHIP\tVIA")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Person.ID, r.Person.FullName(), r.Label, r.ConnectionPath)
	}
	return tw.Flush()
}

func printMatches(w io.Writer, candidates []models.MatchCandidate, format string) error {
	resp := handler.FromMatchCandidates(candidates)
	if format == formatJSON {
		return printJSON(w, resp)
	}
	if len(candidates) == 0 {
		fmt.Fprintln(w, "No likely duplicates found.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PERSON\tNAME\tBORN\tSCORE\tFLAGS")
	for _, c := range resp.Candidates {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\t%s\n", c.Person.ID, c.Person.FullName, c.Person.DateOfBirth, c.Score, candidateFlags(c))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if resp.Blocking {
		fmt.Fprintln(w, "\nA high-confidence duplicate exists; creating this person should be blocked.")
	}
	return nil
}

func candidateFlags(c handler.MatchCandidateResponse) string {
	var flags []string
	if c.HighConfidence {
		flags = append(flags, "high-confidence")
	}
	if c.IsSelf {
		flags = append(flags, "self")
	}
	if c.AlreadyConnected {
		flags = append(flags, "connected")
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ",")
}
