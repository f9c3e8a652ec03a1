package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"

	"finder/internal/client"
	"finder/internal/form"
	"finder/internal/model"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	lostStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	foundStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	resolvedStyle = lipgloss.NewStyle().Faint(true)
	tagStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

func main() {
	var serverURL string

	app := &cli.Command{
		Name:      "findctl",
		Usage:     "School lost-and-found client",
		UsageText: "findctl [global options] command [command options]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "server",
				Aliases:     []string{"s"},
				Usage:       "finder server base URL",
				Sources:     cli.EnvVars("FINDER_SERVER"),
				Value:       "http://localhost:8080",
				Destination: &serverURL,
			},
		},
	}

	app.Commands = []*cli.Command{
		listCmd(&serverURL),
		watchCmd(&serverURL),
		reportCmd(&serverURL),
		resolveCmd(&serverURL),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func listCmd(serverURL *string) *cli.Command {
	var typ, status string
	return &cli.Command{
		Name:  "list",
		Usage: "List items, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "type",
				Aliases:     []string{"t"},
				Usage:       "filter by type (LOST or FOUND)",
				Destination: &typ,
			},
			&cli.StringFlag{
				Name:        "status",
				Usage:       "filter by status (ACTIVE or RESOLVED)",
				Destination: &status,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			store := client.New(*serverURL)
			items, err := store.List(ctx)
			if err != nil {
				return err
			}
			renderItems(items, typ, status)
			return nil
		},
	}
}

func watchCmd(serverURL *string) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Follow the listing, re-rendering on every change",
		Action: func(ctx context.Context, c *cli.Command) error {
			store := client.New(*serverURL)

			cancel := store.Subscribe(func(items []model.Item) {
				fmt.Print("\033[2J\033[H") // clear screen
				fmt.Println(headerStyle.Render("분실물 센터 (live)") + "  " +
					noticeStyle.Render(time.Now().Format("15:04:05")))
				renderItems(items, "", "")
			})
			defer cancel()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit
			return nil
		},
	}
}

func reportCmd(serverURL *string) *cli.Command {
	var imagePath string
	return &cli.Command{
		Name:      "report",
		Usage:     "Report a lost or found item",
		UsageText: "findctl report [--image photo.jpg]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "image",
				Aliases:     []string{"i"},
				Usage:       "photo of the item; the AI pre-fills the form from it",
				Destination: &imagePath,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			store := client.New(*serverURL)
			ctrl := form.New(store, store)

			if imagePath != "" {
				if err := analyzeImage(ctx, ctrl, imagePath); err != nil {
					return err
				}
			}

			if err := runReportForm(ctrl); err != nil {
				if errors.Is(err, huh.ErrUserAborted) {
					return nil
				}
				return err
			}

			item, err := ctrl.Submit(ctx)
			if err != nil {
				var verr *form.ValidationError
				if errors.As(err, &verr) {
					return fmt.Errorf("필수 항목을 모두 입력해주세요 (%s)", strings.Join(verr.Missing, ", "))
				}
				return err
			}

			fmt.Printf("%s %s\n", noticeStyle.Render("등록 완료:"), item.Title)
			fmt.Printf("id: %s\n", item.ID)
			fmt.Printf("목록: findctl list --type %s\n", item.Type)
			return nil
		},
	}
}

func resolveCmd(serverURL *string) *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "Mark an item as resolved (returned to its owner)",
		UsageText: "findctl resolve <id>",
		Action: func(ctx context.Context, c *cli.Command) error {
			id := c.Args().First()
			if id == "" {
				return fmt.Errorf("item id required")
			}
			store := client.New(*serverURL)
			if err := store.UpdateStatus(ctx, id, model.StatusResolved); err != nil {
				return err
			}
			fmt.Println(noticeStyle.Render("처리 완료로 변경했습니다."))
			return nil
		},
	}
}

// analyzeImage attaches the photo to the draft and lets the server's AI
// pre-fill it. Analysis failure is advisory only; the form still opens.
func analyzeImage(ctx context.Context, ctrl *form.Controller, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}

	fmt.Println(noticeStyle.Render("AI가 분석 중..."))
	if err := ctrl.PickImage(ctx, data, mimeForPath(path)); err != nil {
		return err
	}
	if adv := ctrl.Advisory(); adv != nil {
		fmt.Println(noticeStyle.Render(adv.Message))
	}
	return nil
}

// runReportForm collects the item fields, seeded from the controller's draft
// (which the analyzer may already have filled in).
func runReportForm(ctrl *form.Controller) error {
	draft := ctrl.Draft()

	typ := draft.Type
	title := draft.Title
	category := draft.Category
	location := draft.Location
	date := draft.Date
	description := draft.Description
	contact := draft.Contact
	tags := strings.Join(draft.Tags, ", ")

	categoryOptions := make([]huh.Option[string], 0, len(model.Categories))
	for _, cat := range model.Categories {
		categoryOptions = append(categoryOptions, huh.NewOption(cat, cat))
	}

	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("등록 유형").
				Options(
					huh.NewOption("🎁 습득물 (주웠어요)", model.TypeFound),
					huh.NewOption("🔍 분실물 (잃어버렸어요)", model.TypeLost),
				).
				Value(&typ),
			huh.NewInput().
				Title("물건 이름 *").
				Placeholder("예: 파란색 필통, 흰색 에어팟 등").
				Validate(requireField("물건 이름")).
				Value(&title),
			huh.NewSelect[string]().
				Title("카테고리").
				Options(categoryOptions...).
				Value(&category),
			huh.NewInput().
				Title("날짜").
				Value(&date),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("장소 *").
				Placeholder("예: 2층 도서관 입구").
				Validate(requireField("장소")).
				Value(&location),
			huh.NewText().
				Title("상세 설명").
				Value(&description),
			huh.NewInput().
				Title("연락처 *").
				Placeholder("예: 학생회실, 010-0000-0000").
				Validate(requireField("연락처")).
				Value(&contact),
			huh.NewInput().
				Title("태그 (쉼표로 구분)").
				Value(&tags),
		),
	).Run()
	if err != nil {
		return err
	}

	edits := map[string]any{
		"type":        typ,
		"title":       title,
		"category":    category,
		"location":    location,
		"date":        date,
		"description": description,
		"contact":     contact,
		"tags":        splitTags(tags),
	}
	for field, value := range edits {
		if _, err := ctrl.ApplyEdit(field, value); err != nil {
			return err
		}
	}
	return nil
}

func requireField(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s은(는) 필수입니다", name)
		}
		return nil
	}
}

func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	if tags == nil {
		tags = []string{}
	}
	return tags
}

func mimeForPath(path string) string {
	switch {
	case strings.HasSuffix(strings.ToLower(path), ".png"):
		return "image/png"
	case strings.HasSuffix(strings.ToLower(path), ".webp"):
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

func renderItems(items []model.Item, typ, status string) {
	shown := 0
	for _, item := range items {
		if typ != "" && item.Type != typ {
			continue
		}
		if status != "" && item.Status != status {
			continue
		}
		shown++

		badge := foundStyle.Render("습득")
		if item.Type == model.TypeLost {
			badge = lostStyle.Render("분실")
		}

		line := fmt.Sprintf("%s  %s  %s · %s", badge, headerStyle.Render(item.Title), item.Category, item.Location)
		if item.Status == model.StatusResolved {
			line = resolvedStyle.Render(line + "  (처리 완료)")
		}
		fmt.Println(line)

		meta := fmt.Sprintf("      %s · %s · %s", item.Date, item.Contact,
			time.UnixMilli(item.CreatedAt).Format("2006-01-02 15:04"))
		fmt.Println(resolvedStyle.Render(meta))
		if len(item.Tags) > 0 {
			fmt.Println("      " + tagStyle.Render("#"+strings.Join(item.Tags, " #")))
		}
		fmt.Printf("      id: %s\n", item.ID)
	}

	if shown == 0 {
		fmt.Println(resolvedStyle.Render("표시할 물건이 없습니다."))
	}
}
