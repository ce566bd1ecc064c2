package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"sportiify/internal/client"
)

const usage = `usage: sportiify [-api URL] [-token-file PATH] <command> [flags] [args]

commands:
  register -name NAME -email EMAIL [-password PASSWORD]
  login -email EMAIL [-password PASSWORD]
  logout
  status
  predictions [-page N] [-date YYYY-MM-DD] [-league NAME] [-team NAME] [-sort date|league|team]
  predict [-competition NAME] [-date DATE] MATCH_ID
  narrate MATCH_ID
  video COMPETITION
  competitions SPORT
  matches [-competition CID] [-from YYYY-MM-DD] [-to YYYY-MM-DD] SPORT

PASSWORD defaults to $SPORTIIFY_PASSWORD.`

type app struct {
	api     *client.API
	session *client.AuthState
	out     io.Writer
}

func run(ctx context.Context, args []string, out io.Writer, log *slog.Logger) error {
	global := flag.NewFlagSet("sportiify", flag.ContinueOnError)
	global.SetOutput(io.Discard)
	apiURL := global.String("api", envOr("SPORTIIFY_API_URL", "http://localhost:8080"), "gateway base URL")
	tokenFile := global.String("token-file", os.Getenv("SPORTIIFY_TOKEN_FILE"), "session token file")
	if err := global.Parse(args); err != nil {
		return fmt.Errorf("%w\n%s", err, usage)
	}

	rest := global.Args()
	if len(rest) == 0 {
		return errors.New(usage)
	}

	path := *tokenFile
	if path == "" {
		var err error
		if path, err = client.DefaultTokenPath(); err != nil {
			return err
		}
	}

	api := client.NewAPI(*apiURL)
	a := &app{
		api:     api,
		session: client.NewAuthState(api, client.NewFileTokenStore(path), log),
		out:     out,
	}

	cmd, cmdArgs := rest[0], rest[1:]
	switch cmd {
	case "register":
		return a.register(ctx, cmdArgs)
	case "login":
		return a.login(ctx, cmdArgs)
	case "logout":
		return a.logout()
	case "status":
		return a.status(ctx)
	case "predictions":
		return a.predictions(ctx, cmdArgs)
	case "predict":
		return a.predict(ctx, cmdArgs)
	case "narrate":
		return a.narrate(ctx, cmdArgs)
	case "video":
		return a.video(ctx, cmdArgs)
	case "competitions":
		return a.competitions(ctx, cmdArgs)
	case "matches":
		return a.matches(ctx, cmdArgs)
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := newFlags("register")
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", os.Getenv("SPORTIIFY_PASSWORD"), "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.session.Register(ctx, *name, *email, *password); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registered and signed in as %s\n", *email)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := newFlags("login")
	email := fs.String("email", "", "email address")
	password := fs.String("password", os.Getenv("SPORTIIFY_PASSWORD"), "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.session.Login(ctx, *email, *password); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s\n", *email)
	return nil
}

func (a *app) logout() error {
	if err := a.session.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func (a *app) status(ctx context.Context) error {
	state := a.session.Init(ctx)
	if state != client.StateAuthenticated {
		fmt.Fprintln(a.out, "Not signed in")
		return nil
	}

	if u := a.session.User(); u != nil {
		fmt.Fprintf(a.out, "Signed in as %s\n", u.Email)
	} else {
		fmt.Fprintln(a.out, "Signed in")
	}
	return nil
}

func (a *app) predictions(ctx context.Context, args []string) error {
	fs := newFlags("predictions")
	page := fs.Int("page", 1, "page number")
	date := fs.String("date", "", "match day, YYYY-MM-DD")
	league := fs.String("league", "", "competition name")
	team := fs.String("team", "", "team name fragment")
	sort := fs.String("sort", "date", "date, league or team")
	if err := fs.Parse(args); err != nil {
		return err
	}

	q := client.NewPredictionsQuery(a.api)
	fetchErr := q.Fetch(ctx, client.ListParams{Page: *page, Date: *date, League: *league, Team: *team, Sort: *sort})
	s := q.Snapshot()
	if s.Error != "" {
		return fmt.Errorf("%s (%v)", s.Error, fetchErr)
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MID\tDATE\tCOMPETITION\tMATCH")
	for _, p := range s.Predictions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s vs %s\n", p.MID, p.MatchDate.Format("2006-01-02 15:04"), p.CompetitionName, p.HomeTeam, p.AwayTeam)
	}
	tw.Flush()
	fmt.Fprintf(a.out, "Page %d of %d\n", s.Params.Page, s.TotalPages)
	return nil
}

func (a *app) predict(ctx context.Context, args []string) error {
	fs := newFlags("predict")
	competition := fs.String("competition", "", "competition name, stored with the prediction")
	date := fs.String("date", "", "kick-off time, stored with the prediction")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("predict needs exactly one MATCH_ID")
	}

	a.session.Init(ctx)
	return a.session.Guard(ctx, func(ctx context.Context, token string) error {
		raw, err := a.api.PredictMatch(ctx, token, fs.Arg(0), *competition, *date)
		if err != nil {
			return err
		}
		return printJSON(a.out, raw)
	})
}

func (a *app) narrate(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("narrate needs exactly one MATCH_ID")
	}
	n, err := a.api.Narration(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, n.Text)
	return nil
}

func (a *app) video(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("video needs a COMPETITION")
	}
	v, err := a.api.Video(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s\n(expires %s)\n", v.URL, v.ExpiresAt.Local().Format("15:04"))
	return nil
}

func (a *app) competitions(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("competitions needs exactly one SPORT")
	}
	items, err := a.api.Competitions(ctx, args[0])
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CID\tNAME")
	for _, c := range items {
		fmt.Fprintf(tw, "%s\t%s\n", c.CID, c.CName)
	}
	return tw.Flush()
}

func (a *app) matches(ctx context.Context, args []string) error {
	fs := newFlags("matches")
	cid := fs.String("competition", "", "competition id; empty lists the current matches")
	from := fs.String("from", "", "first day, YYYY-MM-DD")
	to := fs.String("to", "", "last day, YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("matches needs exactly one SPORT")
	}

	var (
		items []client.Match
		err   error
	)
	if *cid != "" {
		items, err = a.api.CompetitionMatches(ctx, fs.Arg(0), *cid, *from, *to)
	} else {
		items, err = a.api.Matches(ctx, fs.Arg(0))
	}
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MID\tSTART\tCOMPETITION\tMATCH")
	for _, m := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s vs %s\n", m.MID, m.DateStart, m.Competition.CName, m.Teams.Home.TName, m.Teams.Away.TName)
	}
	return tw.Flush()
}

func printJSON(w io.Writer, raw json.RawMessage) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
