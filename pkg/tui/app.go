package tui

import (
	"context"

	"github.com/charmbracelet/huh"

	"github.com/Kruglikle/Free-room-MIET/pkg/schedule"
)

// RunTUI launches the main menu interactive form experience
func RunTUI(ctx context.Context, eng *schedule.Scheduler) error {
	var action string

	initialForm := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("What would you like to do?").
				Options(
					huh.NewOption("🚪 Find a free room", "free"),
					huh.NewOption("👥 Refresh the group list", "groups"),
					huh.NewOption("🏢 Rebuild the room list", "rooms"),
					huh.NewOption("📅 Export a group timetable", "export"),
				).
				Value(&action),
		),
	).WithTheme(GetTheme())

	if err := initialForm.Run(); err != nil {
		return err
	}

	switch action {
	case "groups":
		return RunGroupsTUI(ctx, eng)
	case "rooms":
		return RunRoomsTUI(ctx, eng)
	case "export":
		return RunExportTUI(ctx, eng)
	}

	return RunFreeRoomsTUI(ctx, eng)
}
