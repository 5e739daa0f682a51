package parser

import (
	"crypto/sha256"
	"fmt"
	"os"

	"github.com/pable/go-battle-stats/internal/model"
)

// Options controls how a match file is read.
type Options struct {
	PlayerTokens [2]int // positions of the player ids in the file name
	Week         int
	Format       string // "auto", "html" or "log"; empty means auto
}

// DefaultOptions reads player ids from the league file-name convention.
func DefaultOptions() Options {
	return Options{PlayerTokens: DefaultPlayerTokens, Format: FormatAuto}
}

// ParseFile reads one match export and returns the preprocessed match.
func ParseFile(path string, opts Options) (*model.RawMatch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	raw, err := Parse(data, opts)
	if err != nil {
		return nil, err
	}
	raw.Source = path
	assignFileIDs(raw, path, opts.PlayerTokens)
	return raw, nil
}

// Parse preprocesses an in-memory export. Player ids default to the
// normalized display names.
func Parse(data []byte, opts Options) (*model.RawMatch, error) {
	// Hash content for idempotency key.
	matchID := fmt.Sprintf("%x", sha256.Sum256(data))

	log, err := extractAs(data, opts.Format)
	if err != nil {
		return nil, err
	}
	body, err := ExtractBattleBody(log)
	if err != nil {
		return nil, err
	}
	pre, err := Preprocess(body)
	if err != nil {
		return nil, err
	}

	raw := &model.RawMatch{
		MatchID: matchID,
		Week:    opts.Week,
		Players: pre.Players,
		Lines:   pre.Lines,
		Aliases: pre.Aliases.Bindings(),
	}
	for i := range raw.Players {
		raw.Players[i].ID = raw.Players[i].Key
	}
	return raw, nil
}

// assignFileIDs attaches the file-name ids to the declared players, matching
// by normalized name and falling back to declaration order.
func assignFileIDs(raw *model.RawMatch, path string, tokens [2]int) {
	a, b, err := PlayerIDsFromFilename(path, tokens)
	if err != nil {
		return
	}
	p1, p2 := &raw.Players[0], &raw.Players[1]
	if NormalizeName(a) == p2.Key || NormalizeName(b) == p1.Key {
		a, b = b, a
	}
	p1.ID, p2.ID = a, b
}
