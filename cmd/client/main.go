// Package main runs the filmweek client shell: an interactive loop over
// the session-gated recommendation core.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/avetrov/filmweek/internal/client/api"
	"github.com/avetrov/filmweek/internal/client/app"
	clientconfig "github.com/avetrov/filmweek/internal/client/config"
	"github.com/avetrov/filmweek/internal/client/credential"
	"github.com/avetrov/filmweek/internal/logger"
)

var (
	version   string
	buildDate string
)

func promptLine(scanner *bufio.Scanner, label string) string {
	fmt.Print(label)
	if !scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(scanner.Text())
}

// repl runs the interactive shell loop over the app facade.
func repl(a *app.App) {
	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)

	if profile, ok, _ := a.Restore(ctx); ok {
		fmt.Printf("Welcome back, %s\n", profile.Username)
	}

	for {
		fmt.Print("filmweek> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "help":
			fmt.Println("Available commands: help, register, login, whoami, films [n], weekly [new], status, upload <file.csv>, logout, exit")
		case "register":
			username := promptLine(scanner, "username: ")
			email := promptLine(scanner, "email: ")
			password := promptLine(scanner, "password: ")
			profile, err := a.Register(ctx, username, email, password)
			if err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Printf("Registered and logged in as %s\n", profile.Username)
		case "login":
			username := promptLine(scanner, "username: ")
			password := promptLine(scanner, "password: ")
			profile, err := a.Login(ctx, username, password)
			if err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Printf("Logged in as %s\n", profile.Username)
		case "whoami":
			profile, ok := a.Profile()
			if !ok {
				fmt.Println("Not logged in")
				continue
			}
			fmt.Printf("ID: %d\nUsername: %s\nEmail: %s\n", profile.ID, profile.Username, profile.Email)
		case "films":
			topN := 12
			if len(args) > 1 {
				if n, err := strconv.Atoi(args[1]); err == nil && n > 0 {
					topN = n
				}
			}
			if err := a.FetchRecommendations(ctx, topN); err != nil {
				fmt.Println(err)
				continue
			}
			recs := a.Recommendations()
			if len(recs) == 0 {
				fmt.Println("No recommendations yet. Upload some ratings first.")
				continue
			}
			for i, rec := range recs {
				fmt.Printf("%2d. %s (score %.2f, rating %.1f/%d votes)\n",
					i+1, rec.Title, rec.WeightedScore, rec.VoteAverage, rec.VoteCount)
				if rec.SourceMovies != "" {
					fmt.Printf("    based on: %s\n", rec.SourceMovies)
				}
			}
		case "weekly":
			forceNew := len(args) > 1 && args[1] == "new"
			if forceNew {
				st, ok := a.Status()
				if ok && !st.CanGenerateNew {
					fmt.Printf("New pick not available yet (%d days to go)\n", st.DaysUntilNew)
					continue
				}
			}
			if err := a.FetchWeekly(ctx, forceNew); err != nil {
				fmt.Println(err)
				continue
			}
			printWeekly(a)
		case "status":
			if err := a.FetchWeekly(ctx, false); err != nil {
				fmt.Println(err)
				continue
			}
			st, ok := a.Status()
			if !ok {
				fmt.Println("No status available")
				continue
			}
			if !st.HasRecommendation {
				fmt.Println("No recommendation yet")
				continue
			}
			if st.DaysUntilNew > 0 {
				fmt.Printf("%d days until new recommendation\n", st.DaysUntilNew)
			} else {
				fmt.Println("New recommendation available!")
			}
			if st.LastGenerated != "" {
				fmt.Printf("Last generated: %s\n", st.LastGenerated)
			}
		case "upload":
			if len(args) < 2 {
				fmt.Println("Usage: upload <file.csv>")
				continue
			}
			report, err := a.UploadRatings(ctx, args[1])
			if err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Printf("File uploaded successfully! %s\n", report.Message)
			fmt.Printf("Accepted: %d, rejected: %d\n", report.SuccessfulUploads, report.FailedUploads)
			for _, title := range report.FailedMovies {
				fmt.Printf("  not matched: %s\n", title)
			}
		case "logout":
			a.Logout()
			fmt.Println("Logged out")
		case "exit":
			fmt.Println("Bye")
			return
		default:
			fmt.Println("Unknown command. Type 'help' for a list of commands.")
		}
	}
}

// printWeekly renders the weekly snapshot: pick, providers, and status.
func printWeekly(a *app.App) {
	pick, ok := a.Weekly()
	if !ok {
		fmt.Println("No recommendation yet. Rate some movies to get your first weekly pick!")
		return
	}
	if pick.IsNew {
		fmt.Println("your watch of the week is...")
	}
	fmt.Println(pick.Title)
	if pick.Tagline != "" {
		fmt.Printf("  %s\n", pick.Tagline)
	}
	if pick.Overview != "" {
		fmt.Printf("  %s\n", pick.Overview)
	}
	if pick.SourceMovie != "" {
		fmt.Printf("  Based on: %s", pick.SourceMovie)
		if pick.UserRating > 0 {
			fmt.Printf(" (you rated it %.0f/5)", pick.UserRating)
		}
		fmt.Println()
	}
	if pick.GeneratedDate != "" {
		fmt.Printf("  Generated on %s\n", pick.GeneratedDate)
	}

	provs := a.Providers()
	if len(provs) == 0 {
		fmt.Println("  Streaming information not available")
		return
	}
	fmt.Println("  Where to watch:")
	for _, p := range provs {
		methods := make([]string, 0, len(p.AccessMethods))
		for _, m := range p.AccessMethods {
			methods = append(methods, string(m))
		}
		fmt.Printf("    %s [%s]\n", p.Name, strings.Join(methods, ", "))
	}
}

// main parses flags, loads configuration, and starts the shell.
func main() {
	var (
		configPath string
		serverURL  string
		showVer    bool
	)

	flag.StringVar(&configPath, "config", clientconfig.DefaultConfigPath(), "path to config file")
	flag.StringVar(&configPath, "c", clientconfig.DefaultConfigPath(), "path to config file (shorthand)")
	flag.StringVar(&serverURL, "url", "", "server base URL (overrides config)")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("filmweek Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	cfg, err := clientconfig.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	if serverURL != "" {
		cfg.Server.URL = serverURL
	}

	lg := logger.New()
	if err := lg.Init(cfg.Log.Level); err != nil {
		log.Fatal(err)
	}
	defer func() { _ = lg.Log.Sync() }()

	store := credential.NewStore(cfg.Token.Path)
	client := api.NewClient(cfg.Server.URL, store)
	a := app.New(store, client, lg.Log)

	repl(a)
}
