package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tranenterprises/MotivationFiles2.0-sub001/internal/alignment"
)

var (
	alignAt     int
	alignRadius int

	alignCmd = &cobra.Command{
		Use:   "align [FILE]",
		Short: "Convert character timings into word timings",
		Long: paragraph(
			fmt.Sprintf("\nRead a %s timing payload (JSON) and print the derived word timings. With %s, print the highlight window active at that playback position instead.",
				keyword("text-to-speech"), keyword("--at")),
		),
		Example: paragraph("motivate align synthesis.json\nmotivate align synthesis.json --at 350 --radius 0\ncat synthesis.json | motivate align -"),
		Args:    cobra.MaximumNArgs(1),
		RunE:    runAlign,
	}
)

// synthesisResult is the shape of a stored synthesis response: the
// spoken text plus its character-level timing payload. A bare payload
// without the wrapper is accepted too.
type synthesisResult struct {
	Text      string            `json:"text"`
	Alignment alignment.Payload `json:"alignment"`
}

func runAlign(cmd *cobra.Command, args []string) error {
	data, err := readAlignSource(args)
	if err != nil {
		return err
	}

	var result synthesisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("unable to parse timing payload: %w", err)
	}
	if !alignment.Validate(result.Alignment) {
		// Maybe the file is a bare payload without the wrapper.
		if err := json.Unmarshal(data, &result.Alignment); err != nil {
			return fmt.Errorf("unable to parse timing payload: %w", err)
		}
	}

	words := alignment.Process(result.Text, result.Alignment)
	if len(words) == 0 {
		return fmt.Errorf("no words derived: payload is empty or malformed")
	}

	out := cmd.OutOrStdout()

	if alignAt >= 0 {
		indices := alignment.ActiveWords(words, alignAt, alignRadius)
		if len(indices) == 0 {
			fmt.Fprintf(out, "no active words at %dms\n", alignAt)
			return nil
		}
		for _, i := range indices {
			fmt.Fprintf(out, "%4d  %6dms  %6dms  %s\n", i, words[i].StartMs, words[i].EndMs, words[i].Word)
		}
		return nil
	}

	for i, w := range words {
		fmt.Fprintf(out, "%4d  %6dms  %6dms  %s\n", i, w.StartMs, w.EndMs, w.Word)
	}
	return nil
}

// readAlignSource reads the payload from the file argument, or stdin
// for "-" or no argument on a pipe.
func readAlignSource(args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(os.Stdin)
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("unable to open file: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("file is empty: %s", args[0])
	}
	return data, nil
}

func init() {
	alignCmd.Flags().IntVar(&alignAt, "at", -1, "playback position in milliseconds to query")
	alignCmd.Flags().IntVar(&alignRadius, "radius", alignment.DefaultRadius, "neighbor words highlighted on each side of the match")
}
