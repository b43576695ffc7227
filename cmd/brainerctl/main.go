// brainerctl is the command line client of the Brainer API.
//
//	brainerctl login -email me@example.com -password secret
//	brainerctl courses
//	brainerctl import books/ddia/course-plan.yaml
//	brainerctl chapter data-eng 3
//	brainerctl upload figures/fode_0101.png
//
// The API address comes from -api or API_URL, the token from -token or BRAINER_TOKEN.
package main

import (
	"brainer_backend/pkg/client"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: brainerctl [-api URL] [-token TOKEN] <command> [args]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "commands:")
	fmt.Fprintln(w, "  login -email E -password P   print an access token")
	fmt.Fprintln(w, "  courses                      list courses")
	fmt.Fprintln(w, "  chapters <course>            list the chapters of a course")
	fmt.Fprintln(w, "  chapter <course> <n>         print the content of chapter number n")
	fmt.Fprintln(w, "  import <plan.json|yaml>      create a course with its parts and chapters")
	fmt.Fprintln(w, "  upload <image>               upload an image, print its public URL")
	fmt.Fprintln(w, "  progress <course>            show your progress in a course")
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	fs := flag.NewFlagSet("brainerctl", flag.ExitOnError)
	apiURL := fs.String("api", getenv("API_URL", "http://localhost:8000"), "Brainer API base URL")
	token := fs.String("token", os.Getenv("BRAINER_TOKEN"), "bearer token for write commands")
	timeout := fs.Duration("timeout", 30*time.Second, "per-command timeout")
	fs.Usage = func() { usage(os.Stderr) }
	_ = fs.Parse(os.Args[1:])

	args := fs.Args()
	if len(args) == 0 {
		usage(os.Stderr)
		os.Exit(2)
	}

	session := client.NewSession()
	session.SetToken(*token)
	c := client.New(*apiURL, session, client.WithTimeout(*timeout))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, c, args, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.Is(err, errUsage) {
			usage(os.Stderr)
		}
		if errors.Is(err, client.ErrNotAuthenticated) {
			fmt.Fprintln(os.Stderr, "set BRAINER_TOKEN or pass -token (see: brainerctl login)")
		}
		os.Exit(1)
	}
}

var errUsage = errors.New("invalid arguments")

func run(ctx context.Context, c *client.Client, args []string, out io.Writer) error {
	switch args[0] {
	case "login":
		fs := flag.NewFlagSet("login", flag.ContinueOnError)
		email := fs.String("email", "", "account email")
		password := fs.String("password", os.Getenv("BRAINER_PASSWORD"), "account password")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if err := c.Login(ctx, *email, *password); err != nil {
			return err
		}
		fmt.Fprintln(out, c.Session().Token())
		return nil

	case "courses":
		courses, err := c.ListCourses(ctx)
		if err != nil {
			return err
		}
		for _, course := range courses {
			fmt.Fprintf(out, "%-40s %s\n", course.Slug, course.Title)
		}
		return nil

	case "chapters":
		if len(args) != 2 {
			return errUsage
		}
		chapters, err := c.ListChapters(ctx, args[1])
		if err != nil {
			return err
		}
		for _, ch := range chapters {
			fmt.Fprintf(out, "%3d  %-40s %s\n", ch.Order, ch.Slug, ch.Title)
		}
		return nil

	case "chapter":
		if len(args) != 3 {
			return errUsage
		}
		n, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("chapter number must be an integer, got %q", args[2])
		}
		return printChapter(ctx, c, args[1], n, out)

	case "import":
		if len(args) != 2 {
			return errUsage
		}
		plan, err := LoadPlan(args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "importing %s: %d parts, %d chapters\n", plan.Course.Title, len(plan.Parts), plan.ChapterCount())
		return ImportPlan(ctx, c, plan, out)

	case "upload":
		if len(args) != 2 {
			return errUsage
		}
		f, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer f.Close()
		res, err := c.UploadImage(ctx, filepath.Base(args[1]), f)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, res.URL)
		return nil

	case "progress":
		if len(args) != 2 {
			return errUsage
		}
		p, err := c.GetCourseProgress(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "chapters  %d/%d (%.1f%%)\n", p.CompletedChapters, p.TotalChapters, p.CompletionPercentage)
		fmt.Fprintf(out, "exercises %d answered, %d correct, %d total\n", p.AnsweredExercises, p.CorrectExercises, p.TotalExercises)
		return nil

	default:
		usage(out)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// printChapter looks the chapter up by its order number, then prints its content.
func printChapter(ctx context.Context, c *client.Client, courseSlug string, n int, out io.Writer) error {
	chapters, err := c.ListChapters(ctx, courseSlug)
	if err != nil {
		return err
	}
	orders := make([]int, 0, len(chapters))
	for _, ch := range chapters {
		if ch.Order != n {
			orders = append(orders, ch.Order)
			continue
		}
		detail, err := c.GetChapter(ctx, courseSlug, ch.Slug)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "<!-- %s (id %d, slug %s) -->\n", detail.Title, detail.ID, detail.Slug)
		if detail.Content != nil {
			fmt.Fprintln(out, *detail.Content)
		}
		return nil
	}
	return fmt.Errorf("chapter %d not found in %s, available: %v", n, courseSlug, orders)
}
