package quotes

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/sahilm/fuzzy"

	"github.com/julianstephens/dayquote/internal/cli"
	"github.com/julianstephens/dayquote/internal/constants"
	"github.com/julianstephens/dayquote/internal/models"
	catalog "github.com/julianstephens/dayquote/internal/quotes"
	"github.com/julianstephens/dayquote/internal/storage"
)

type QuoteCmd struct {
	ID       string   `help:"Show the quote with this id."`
	Category []string `help:"Draw from these categories instead of the selected ones." sep:","`
	Random   bool     `help:"Pick a fresh quote instead of today's."`
	Plain    bool     `help:"Print without markdown styling."`
	Style    string   `help:"Glamour style for rendering." default:"dark" enum:"dark,light,notty,ascii,dracula,pink,tokyo-night"`
	Width    int      `help:"Wrap width." default:"80"`
}

func (c *QuoteCmd) Run(ctx *cli.Context) error {
	cat, err := ctx.Catalog()
	if err != nil {
		return err
	}

	var q models.Quote
	if c.ID != "" {
		var ok bool
		if q, ok = cat.Lookup(c.ID); !ok {
			return fmt.Errorf("no quote with id %q", c.ID)
		}
	} else {
		categories := c.Category
		if len(categories) == 0 {
			prefs, err := ctx.Preferences()
			if err != nil {
				return err
			}
			categories = prefs.SelectedCategories
		}
		rng, err := c.rng(ctx)
		if err != nil {
			return err
		}
		q = catalog.Select(cat, categories, rng)
	}

	if c.Plain {
		ctx.Println(q.Display())
		return nil
	}
	out, err := render(q, c.Style, c.Width)
	if err != nil {
		return err
	}
	ctx.Println(out)
	return nil
}

// rng is seeded by the local day and the install id, so the quote of the day
// is stable until midnight and differs between installs.
func (c *QuoteCmd) rng(ctx *cli.Context) (*rand.Rand, error) {
	if c.Random {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), nil
	}
	loc, err := ctx.Location()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if ctx.Now != nil {
		now = ctx.Now()
	}
	installID, err := storage.EnsureInstallID(ctx.Store)
	if err != nil {
		return nil, err
	}
	h := fnv.New64a()
	h.Write([]byte(installID))
	h.Write([]byte(now.In(loc).Format(constants.DateFormat)))
	return rand.New(rand.NewPCG(h.Sum64(), 0)), nil
}

func markdown(q models.Quote) string {
	var b strings.Builder
	for _, line := range strings.Split(q.Text, "\n") {
		b.WriteString("> " + line + "\n")
	}
	if q.Author != "" {
		b.WriteString(">\n> *" + q.Author + "*\n")
	}
	return b.String()
}

func render(q models.Quote, style string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := r.Render(markdown(q))
	if err != nil {
		return "", fmt.Errorf("failed to render quote: %w", err)
	}
	return strings.TrimRight(out, "\n"), nil
}

type CategoriesCmd struct {
	Search string `arg:"" optional:"" help:"Fuzzy search term."`
}

func (c *CategoriesCmd) Run(ctx *cli.Context) error {
	cat, err := ctx.Catalog()
	if err != nil {
		return err
	}
	prefs, err := ctx.Preferences()
	if err != nil {
		return err
	}
	selected := make(map[string]bool, len(prefs.SelectedCategories))
	for _, s := range prefs.SelectedCategories {
		selected[s] = true
	}

	names := cat.Categories()
	if c.Search != "" {
		matches := fuzzy.Find(strings.ToLower(c.Search), names)
		if len(matches) == 0 {
			ctx.Printf("No categories match %q.\n", c.Search)
			return nil
		}
		names = names[:0:0]
		for _, m := range matches {
			names = append(names, m.Str)
		}
	}

	for _, name := range names {
		mark := " "
		if selected[name] {
			mark = "*"
		}
		ctx.Printf("%s %-16s %3d quotes\n", mark, name, len(cat.Quotes(name)))
	}
	if c.Search == "" {
		ctx.Println("\n* selected. Change with 'dayquote settings --categories a,b'.")
	}
	return nil
}
