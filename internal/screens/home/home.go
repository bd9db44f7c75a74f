package home

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/sensei/internal/content"
	"github.com/abhisek/sensei/internal/quiz"
	"github.com/abhisek/sensei/internal/router"
	"github.com/abhisek/sensei/internal/screen"
	"github.com/abhisek/sensei/internal/screens/learn"
	"github.com/abhisek/sensei/internal/session"
	"github.com/abhisek/sensei/internal/store"
	"github.com/abhisek/sensei/internal/ui/components"
	"github.com/abhisek/sensei/internal/ui/theme"
)

type courseEntry struct {
	id         string
	title      string
	completion float64
}

type loadedMsg struct {
	courses []courseEntry
	stats   *store.LearningStats
	err     error
}

// Model is the landing screen: the course list with per-course
// completion and overall stats.
type Model struct {
	lib       *content.Library
	st        *store.Store
	coord     *session.Coordinator
	generator quiz.Generator
	evaluator quiz.Evaluator
	answerer  learn.Answerer

	courses []courseEntry
	stats   *store.LearningStats
	menu    components.Menu
	loaded  bool
	err     error
}

func New(lib *content.Library, st *store.Store, coord *session.Coordinator, gen quiz.Generator, eval quiz.Evaluator, ans learn.Answerer) *Model {
	return &Model{lib: lib, st: st, coord: coord, generator: gen, evaluator: eval, answerer: ans}
}

func (m *Model) Init() tea.Cmd {
	return m.reload()
}

func (m *Model) reload() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		ids, err := m.lib.List()
		if err != nil {
			return loadedMsg{err: err}
		}

		var courses []courseEntry
		for _, id := range ids {
			tree, err := m.lib.Load(id)
			if err != nil {
				continue
			}
			entry := courseEntry{id: id, title: tree.Title}
			if p, err := m.st.ProgressRepo().Get(ctx, id); err == nil && p != nil {
				entry.completion = p.Completion
			}
			courses = append(courses, entry)
		}

		stats, err := m.st.LearningStats(ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{courses: courses, stats: stats}
	}
}

func (m *Model) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.loaded = true
		m.err = msg.err
		m.courses = msg.courses
		m.stats = msg.stats
		m.menu = components.NewMenu(m.menuItems())
		return m, nil

	case tea.KeyMsg:
		var cmd tea.Cmd
		m.menu, cmd = m.menu.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) menuItems() []components.MenuItem {
	items := make([]components.MenuItem, 0, len(m.courses))
	for _, c := range m.courses {
		course := c
		items = append(items, components.MenuItem{
			Label: fmt.Sprintf("%-40s %3.0f%%", course.title, course.completion*100),
			Action: func() tea.Cmd {
				return func() tea.Msg {
					tree, err := m.lib.Load(course.id)
					if err != nil {
						return loadedMsg{err: err}
					}
					return router.PushScreenMsg{
						Screen: learn.New(m.coord, tree, m.generator, m.evaluator, m.answerer),
					}
				}
			},
		})
	}
	return items
}

// Refresh reloads courses and stats; called when the screen regains
// focus after a study session.
func (m *Model) Refresh() tea.Cmd {
	return m.reload()
}

func (m *Model) View(width, height int) string {
	if m.err != nil {
		return theme.Incorrect.Render(fmt.Sprintf("  Error: %v", m.err))
	}
	if !m.loaded {
		return theme.Hint.Render("  Loading...")
	}

	var body string
	if len(m.courses) == 0 {
		body = theme.Hint.Render("No courses yet.\n\nAdd one with: sensei courses add <file.json>")
	} else {
		body = theme.Subtitle.Render("Pick a course") + "\n\n" + m.menu.View()
	}

	if m.stats != nil {
		statsLine := fmt.Sprintf(
			"%d courses · %d/%d concepts mastered · %.1f hours · %d day streak",
			m.stats.TotalCourses, m.stats.ConceptsMastered, m.stats.TotalConcepts,
			m.stats.HoursLearned, m.stats.CurrentStreak,
		)
		body += "\n" + theme.Hint.Render(statsLine)
	}

	card := theme.Card.Width(min(width-4, 90)).Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func (m *Model) Title() string {
	return "Home"
}
