package automatic

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/domino14/gomoku/stats"
)

type engineMoves struct {
	moves     int
	fallbacks int
	depth     stats.Statistic
	nodes     stats.Statistic
	seconds   stats.Statistic
}

// AnalyzeLogFile summarizes a move log written by StartCompVComp, per
// engine. Opening moves, which are not searched, are skipped.
func AnalyzeLogFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	r := csv.NewReader(file)

	// engine,gameID,turn,color,move,score,depth,nodes,seconds
	engines := map[string]*engineMoves{}
	games := map[string]bool{}
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
		if record[0] == "engine" {
			continue
		}
		if len(record) != 9 {
			return "", fmt.Errorf("bad record %v", record)
		}
		games[record[1]] = true
		if record[2] == "1" {
			continue
		}
		depth, err := strconv.Atoi(record[6])
		if err != nil {
			return "", err
		}
		nodes, err := strconv.ParseUint(record[7], 10, 64)
		if err != nil {
			return "", err
		}
		secs, err := strconv.ParseFloat(record[8], 64)
		if err != nil {
			return "", err
		}
		em := engines[record[0]]
		if em == nil {
			em = &engineMoves{}
			engines[record[0]] = em
		}
		em.moves++
		if depth == 0 {
			em.fallbacks++
		}
		em.depth.Push(float64(depth))
		em.nodes.Push(float64(nodes))
		em.seconds.Push(secs)
	}

	names := make([]string, 0, len(engines))
	for n := range engines {
		names = append(names, n)
	}
	sort.Strings(names)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Games: %d\n", len(games))
	for _, n := range names {
		em := engines[n]
		fmt.Fprintf(&sb, "%v searched moves: %d (%d without a completed pass)\n", n, em.moves, em.fallbacks)
		fmt.Fprintf(&sb, "%v Mean depth: %.3f  Stdev: %.3f\n", n, em.depth.Mean(), em.depth.Stdev())
		fmt.Fprintf(&sb, "%v Mean nodes: %.0f  Mean time: %.3fs\n", n, em.nodes.Mean(), em.seconds.Mean())
	}
	return sb.String(), nil
}
