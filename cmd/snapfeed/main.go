// Command snapfeed is the command-line client for the photo-sharing
// backend: sign up, log in, browse the feed, and publish captioned
// photos with an optional geolocation.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"

	"snapfeed/internal/backend"
	"snapfeed/internal/config"
	"snapfeed/internal/feed"
	"snapfeed/internal/logger"
	"snapfeed/internal/publish"
	"snapfeed/internal/session"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: snapfeed <command> [flags]

Commands:
  signup      -u <username> -p <password>   create an account and log in
  login       -u <username> -p <password>   log in
  logout                                    log out
  feed        [-pages <n>]                  show the latest posts
  post        -image <path> [-caption <text>] [-lat <deg> -lng <deg>]
  user-posts  [-user <id>]                  show one user's posts
`)
}

func main() {
	log := logger.New("snapfeed")

	cfg := config.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	app, err := newApp(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := app.run(context.Background(), os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", describe(err))
		os.Exit(1)
	}
}

type app struct {
	cfg     *config.Config
	log     *slog.Logger
	current *session.Session
	store   *session.FileStore
	client  *backend.Client
}

func newApp(cfg *config.Config, log *slog.Logger) (*app, error) {
	current := &session.Session{}
	store := session.NewFileStore(cfg.SessionFile)

	state, err := store.Load()
	switch {
	case err == nil:
		current.Restore(state)
	case errors.Is(err, session.ErrNoSavedSession):
		// First run, stay logged out.
	default:
		return nil, err
	}

	client := backend.New(backend.Config{
		BaseURL: cfg.ServerURL,
		AppID:   cfg.AppID,
		Tokens:  current,
	})

	return &app{
		cfg:     cfg,
		log:     log,
		current: current,
		store:   store,
		client:  client,
	}, nil
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "signup":
		return a.authenticate(ctx, "signup", args, a.client.Signup)
	case "login":
		return a.authenticate(ctx, "login", args, a.client.Login)
	case "logout":
		return a.logout(ctx)
	case "feed":
		return a.feed(ctx, args)
	case "post":
		return a.post(ctx, args)
	case "user-posts":
		return a.userPosts(ctx, args)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

type authFunc func(ctx context.Context, username, password string) (*backend.Credentials, error)

func (a *app) authenticate(ctx context.Context, name string, args []string, call authFunc) error {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password")
	fs.Parse(args)

	if *username == "" || *password == "" {
		return errors.New("username and password are required")
	}

	creds, err := call(ctx, *username, *password)
	if err != nil {
		return err
	}

	a.current.Begin(*creds)
	if err := a.store.Save(a.current.Snapshot()); err != nil {
		return err
	}

	fmt.Printf("Logged in as %s\n", creds.User.DisplayName())
	return nil
}

func (a *app) logout(ctx context.Context) error {
	if !a.current.LoggedIn() {
		return session.ErrNotLoggedIn
	}

	if err := a.client.Logout(ctx); err != nil {
		// The local session is cleared regardless so the user is never
		// stuck logged in against an unreachable backend.
		a.log.Warn("backend logout failed", "error", err)
	}

	a.current.End()
	if err := a.store.Clear(); err != nil {
		return err
	}

	fmt.Println("Logged out")
	return nil
}

func (a *app) feed(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("feed", flag.ExitOnError)
	pages := fs.Int("pages", 1, "number of pages to fetch")
	fs.Parse(args)

	pager := feed.NewPager(a.client, feed.DefaultPageSize)

	for i := 0; i < *pages; i++ {
		ch, err := pager.Load(ctx, i == 0)
		if err != nil {
			return err
		}
		res := <-ch
		pager.Apply(res)
		if res.Err != nil {
			return res.Err
		}
		if !pager.MayHaveMore() {
			break
		}
	}

	posts := pager.Posts()
	if len(posts) == 0 {
		fmt.Println("The feed is empty.")
		return nil
	}
	for _, p := range posts {
		printPost(p)
	}
	return nil
}

func (a *app) post(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("post", flag.ExitOnError)
	imagePath := fs.String("image", "", "path to the image file")
	caption := fs.String("caption", "", "caption text")
	lat := fs.Float64("lat", 0, "latitude")
	lng := fs.Float64("lng", 0, "longitude")
	fs.Parse(args)

	if *imagePath == "" {
		return errors.New("an image is required (-image)")
	}

	imageData, err := os.ReadFile(*imagePath)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	var location *backend.GeoPoint
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["lat"] != set["lng"] {
		return errors.New("latitude and longitude must be given together")
	}
	if set["lat"] {
		location = &backend.GeoPoint{Latitude: *lat, Longitude: *lng}
	}

	workflow := publish.New(a.client, a.current)
	res := <-workflow.SubmitAsync(ctx, imageData, *caption, location)
	if res.Err != nil {
		return res.Err
	}

	fmt.Println("Posted:")
	printPost(*res.Post)
	return nil
}

func (a *app) userPosts(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("user-posts", flag.ExitOnError)
	userID := fs.String("user", "", "user id (defaults to the logged-in user)")
	fs.Parse(args)

	id := *userID
	if id == "" {
		user, err := a.current.User()
		if err != nil {
			return err
		}
		id = user.ID
	}

	posts, err := a.client.UserPosts(ctx, id)
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		fmt.Println("No posts yet.")
		return nil
	}
	for _, p := range posts {
		printPost(p)
	}
	return nil
}

func printPost(p backend.Post) {
	fmt.Printf("%s (%s)\n", p.User.DisplayName(), p.TimeAgo())
	if p.Caption != "" {
		fmt.Printf("  %s\n", p.Caption)
	}
	fmt.Printf("  image: %s\n", p.ImageFile.URL)
	if p.Location != nil {
		fmt.Printf("  location: %.5f, %.5f\n", p.Location.Latitude, p.Location.Longitude)
	}
}

// describe renders a failure as a single human-readable message.
func describe(err error) string {
	switch {
	case errors.Is(err, session.ErrNotLoggedIn):
		return "you are not logged in"
	case errors.Is(err, publish.ErrEmptyImage), errors.Is(err, publish.ErrInvalidImage):
		return "that file does not look like an image"
	case errors.Is(err, publish.ErrUploadFailed):
		return "the image could not be uploaded; please try again"
	case errors.Is(err, publish.ErrRecordCreationFailed):
		return "the image was uploaded but the post could not be created; please try again"
	}

	switch backend.KindOf(err) {
	case backend.KindNetwork:
		return "the server could not be reached; check your connection"
	case backend.KindUnauthorized:
		return "login failed or your session has expired; please log in again"
	case backend.KindValidation:
		var be *backend.Error
		if errors.As(err, &be) && be.Message != "" {
			return be.Message
		}
		return "the server rejected the request"
	case backend.KindServer:
		return "the server hit an internal error; please try again later"
	}
	return err.Error()
}
