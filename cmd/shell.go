package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/go-battle-stats/internal/model"
	"github.com/pable/go-battle-stats/internal/report"
	"github.com/pable/go-battle-stats/internal/storage"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long:  "Open a persistent session against the database. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

func runShell(_ *cobra.Command, _ []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	cGreeting.Println("bstats shell")
	cMuted.Println("type 'help' or 'exit'")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print("bstats")
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		cmd, args := tokens[0], tokens[1:]

		var err error
		switch cmd {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp()
		case "list":
			err = shellList(db)
		case "show":
			if len(args) == 0 {
				cError.Fprintln(os.Stderr, "usage: show <match-prefix> [--player <name>]")
				continue
			}
			focus := ""
			for i := 1; i+1 < len(args); i++ {
				if args[i] == "--player" {
					focus = args[i+1]
				}
			}
			err = showMatch(db, args[0], focus)
		case "players":
			err = shellPlayers(db, len(args) > 0 && args[0] == "--weekly")
		case "top":
			err = shellTop(db, args)
		case "sql":
			err = shellSQL(db, strings.TrimSpace(strings.TrimPrefix(line, "sql")))
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q, type 'help'\n", cmd)
		}
		if err != nil {
			cError.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
	return nil
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"list", "list all stored matches"},
		{"show <match-prefix>", "show a match's combatant stats"},
		{"show <match-prefix> --player <name>", "same, highlighting one player"},
		{"players [--weekly]", "per-player chat and team totals"},
		{"top [stat] [n]", "combatants leading a statistic"},
		{"sql <query>", "run a raw SQL query"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-38s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}

func shellList(db *storage.DB) error {
	matches, err := db.ListMatches()
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		cMuted.Println("No matches stored yet.")
		return nil
	}
	report.PrintMatchList(os.Stdout, matches)
	return nil
}

func shellPlayers(db *storage.DB, byWeek bool) error {
	rows, err := db.PlayerTotals(byWeek)
	if err != nil {
		return err
	}
	report.PrintPlayerTable(os.Stdout, rows, byWeek)
	return nil
}

func shellTop(db *storage.DB, args []string) error {
	st, n := model.StatDamageGiven, 10
	if len(args) > 0 {
		var ok bool
		if st, ok = statByName(args[0]); !ok {
			return fmt.Errorf("unknown stat %q", args[0])
		}
	}
	if len(args) > 1 {
		v, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid count %q", args[1])
		}
		n = v
	}
	rows, err := db.AllCombatantStats()
	if err != nil {
		return err
	}
	report.PrintLeaders(os.Stdout, rows, st, n)
	return nil
}

func shellSQL(db *storage.DB, query string) error {
	if query == "" {
		return fmt.Errorf("usage: sql <query>")
	}
	return printQuery(db, query)
}
