package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/julianstephens/dayquote/internal/constants"
	"github.com/julianstephens/dayquote/internal/streak"
	"github.com/julianstephens/dayquote/internal/utils"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var sections []string
	sections = append(sections, titleStyle.Render(constants.AppName+" status"))

	if m.loaded {
		sections = append(sections, renderSummary(m.snap, m.bar), m.table.View())
	} else if m.err == nil {
		sections = append(sections, mutedStyle.Render("Loading..."))
	}

	if m.err != nil {
		sections = append(sections, dangerStyle.Render("Error: "+m.err.Error()))
	} else if m.status != "" {
		sections = append(sections, warningStyle.Render(m.status))
	}

	sections = append(sections, m.help.View(m.keys))
	return docStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// Render draws a snapshot without the interactive parts, for one-shot output.
func Render(snap Snapshot) string {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(40))
	body := renderSummary(snap, bar)

	if len(snap.Triggers) > 0 {
		t := table.New(
			table.WithColumns(scheduleColumns(80)),
			table.WithRows(scheduleRows(snap)),
			table.WithHeight(len(snap.Triggers)+1),
		)
		body = lipgloss.JoinVertical(lipgloss.Left, body, t.View())
	} else {
		body = lipgloss.JoinVertical(lipgloss.Left, body, mutedStyle.Render("Nothing scheduled."))
	}
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(constants.AppName+" status"), body)
}

func renderSummary(snap Snapshot, bar progress.Model) string {
	var b strings.Builder

	streakLine := pluralize(snap.Streak, "day")
	if snap.TodayRecorded {
		streakLine += "  " + goodStyle.Render("today recorded")
	} else if snap.Streak > 0 {
		streakLine += "  " + warningStyle.Render("record today to keep it")
	}
	row(&b, "Streak", streakLine)

	next, prev, ok := streak.NextMilestone(snap.Streak)
	if ok {
		frac := float64(snap.Streak-prev) / float64(next-prev)
		row(&b, "Next", fmt.Sprintf("%s %d/%d", bar.ViewAs(frac), snap.Streak, next))
	} else {
		row(&b, "Next", goodStyle.Render("every milestone reached"))
	}

	if snap.LastActive.IsZero() {
		row(&b, "Last active", mutedStyle.Render("never"))
	} else {
		row(&b, "Last active", humanize.RelTime(snap.LastActive, snap.Now, "ago", "from now"))
	}

	p := snap.Preferences
	if p.NotificationsEnabled {
		row(&b, "Quotes", fmt.Sprintf("%d/day between %02d:00 and %02d:00", p.NotificationsPerDay, p.StartHour, p.EndHour))
	} else {
		row(&b, "Quotes", dangerStyle.Render("disabled"))
	}
	reminder := "off"
	if p.StreakReminderEnabled {
		reminder = "on"
	}
	row(&b, "Reminder", reminder)

	cats := constants.DefaultFallbackCategory
	if len(p.SelectedCategories) > 0 {
		cats = strings.Join(p.SelectedCategories, ", ")
	}
	row(&b, "Categories", cats)

	perm := string(snap.Permission)
	if snap.Permission == constants.PermissionGranted {
		perm = goodStyle.Render(perm)
	} else {
		perm = dangerStyle.Render(perm)
	}
	row(&b, "Delivery", fmt.Sprintf("%s (%s)", snap.Delivery.Channel, perm))

	return b.String()
}

func row(b *strings.Builder, label, value string) {
	b.WriteString(labelStyle.Render(label))
	b.WriteString(value)
	b.WriteString("\n")
}

func scheduleColumns(width int) []table.Column {
	body := max(width-6-8-18-4*2, 10)
	return []table.Column{
		{Title: "Time", Width: 6},
		{Title: "Kind", Width: 8},
		{Title: "Next", Width: 18},
		{Title: "Message", Width: body},
	}
}

func scheduleRows(snap Snapshot) []table.Row {
	today := snap.Now.Format(constants.DateFormat)
	rows := make([]table.Row, 0, len(snap.Triggers))
	for _, t := range snap.Triggers {
		kind := "quote"
		if t.Kind() == constants.TriggerKindStreakReminder {
			kind = "reminder"
		}
		next := "sent today"
		if t.LastFiredDay != today {
			at := utils.NextOccurrence(t.At(), snap.Now)
			next = humanize.RelTime(at, snap.Now, "ago", "from now")
		}
		rows = append(rows, table.Row{t.At().String(), kind, next, t.Body})
	}
	return rows
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
