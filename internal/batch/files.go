package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pable/go-battle-stats/internal/protocol"
)

// matchExts are the file extensions picked up from a directory.
var matchExts = map[string]bool{".html": true, ".htm": true, ".log": true, ".txt": true}

var trailingNumber = regexp.MustCompile(`(\d+)$`)

// SessionJobs lists the match files directly inside dir, sorted by name.
func SessionJobs(dir string) ([]Job, error) {
	files, err := matchFiles(dir)
	if err != nil {
		return nil, err
	}
	jobs := make([]Job, len(files))
	for i, f := range files {
		jobs[i] = Job{Path: f}
	}
	return jobs, nil
}

// LeagueJobs treats every sub-directory of root as one week, in listing
// order. The week label is the trailing number of the directory name
// ("week3" is week 3); a directory without one is labelled by its position.
func LeagueJobs(root string) ([]Job, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read league dir: %w", err)
	}
	var jobs []Job
	pos := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		pos++
		week := WeekLabel(e.Name(), pos)
		files, err := matchFiles(filepath.Join(root, e.Name()))
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			jobs = append(jobs, Job{Path: f, Week: week})
		}
	}
	if pos == 0 {
		return nil, fmt.Errorf("league dir %s has no week directories", root)
	}
	return jobs, nil
}

// WeekLabel returns the trailing number of a week directory name, or
// fallback when there is none.
func WeekLabel(name string, fallback int) int {
	m := trailingNumber.FindString(name)
	if m == "" {
		return fallback
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return fallback
	}
	return n
}

func matchFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !matchExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// moveNotes tallies the annotations of fused move lines.
type moveNotes struct {
	crits, superEffective, resisted int
}

func countMoveNotes(lines []string) moveNotes {
	var n moveNotes
	for _, l := range lines {
		ev := protocol.Classify(l)
		if ev.Kind != protocol.KindMove {
			continue
		}
		if ev.Crit {
			n.crits++
		}
		switch ev.Effectiveness {
		case 1:
			n.superEffective++
		case -1:
			n.resisted++
		}
	}
	return n
}
