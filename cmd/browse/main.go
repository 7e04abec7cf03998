// Command browse is a terminal recipe browser. Plain lines are typed into
// the search box; lines starting with ':' change the other filters.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/pageza/recetario/backend/config"
	"github.com/pageza/recetario/backend/internal/catalog"
	"github.com/pageza/recetario/backend/internal/database"
	"github.com/pageza/recetario/backend/internal/logging"
	"github.com/pageza/recetario/backend/internal/model"
)

const help = `commands:
  <text>              search titles by prefix (empty line clears it)
  :time under15|exactly15|over15|-
  :category Dessert|Starter|MainCourse|-
  :veg on|off
  :sort time|category|-
  :limit N
  :reset
  :quit`

var out sync.Mutex

func render(s catalog.Snapshot) {
	out.Lock()
	defer out.Unlock()
	if s.Err != nil {
		fmt.Printf("#%d error: %v (showing previous results)\n", s.Seq, s.Err)
	}
	fmt.Printf("#%d %d recipes\n", s.Seq, len(s.Results))
	for _, r := range s.Results {
		veg := ""
		if r.Vegetarian {
			veg = " (v)"
		}
		fmt.Printf("  %-50s %-10s %-10s %3d likes%s\n", r.Title, r.Category, r.Time, r.Likes, veg)
	}
}

func unset(v string) string {
	if v == "-" {
		return ""
	}
	return v
}

// apply runs one command line. It reports false on :quit.
func apply(b *catalog.Browser, line string) bool {
	if !strings.HasPrefix(line, ":") {
		b.SetText(line)
		return true
	}
	cmd, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "time":
		b.SetTime(model.TimeBucket(unset(arg)))
	case "category":
		b.SetCategory(model.Category(unset(arg)))
	case "veg":
		b.SetVegetarian(arg == "on")
	case "sort":
		b.SetSort(catalog.SortKey(unset(arg)))
	case "limit":
		n, err := strconv.Atoi(arg)
		if err != nil {
			fmt.Println("limit needs a number")
			return true
		}
		b.SetLimit(n)
	case "reset":
		b.Reset()
	case "quit", "q":
		return false
	default:
		fmt.Println(help)
	}
	return true
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	// keep the terminal for results
	logging.Setup("warn", false)
	if cfg.LogLevel == "debug" {
		logging.Setup(cfg.LogLevel, false)
	}

	st, err := database.OpenStore(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to open store")
	}
	defer st.Close()

	cat := catalog.New(st, catalog.WithTimeout(cfg.QueryTimeout))
	browser := catalog.NewBrowser(cat,
		catalog.WithDebounce(cfg.SearchDebounce),
		catalog.OnUpdate(render))
	defer browser.Close()

	fmt.Println(help)
	browser.Refresh()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if !apply(browser, strings.TrimSpace(scanner.Text())) {
			return
		}
	}
	if err := scanner.Err(); err != nil {
		logrus.WithError(err).Error("Failed to read input")
	}
}
