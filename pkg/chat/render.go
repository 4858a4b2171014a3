package chat

import (
	"fmt"
	"strings"

	"github.com/Kruglikle/Free-room-MIET/pkg/schedule"
)

// renderResults builds the result message: a header describing the
// selection, one page of free rooms and the navigation hint.
func renderResults(sel selection, rooms []string, page, pageSize, totalPages int) string {
	var b strings.Builder

	b.WriteString("Свободные аудитории\n")
	fmt.Fprintf(&b, "День: %s (%s)\n", sel.dayName, sel.date.Format("02.01.2006"))
	fmt.Fprintf(&b, "Пара: %s\n", sel.timeCode)
	if sel.corpus != "" && sel.corpus != "all" {
		fmt.Fprintf(&b, "Корпус: %sxx\n", sel.corpus)
	}
	fmt.Fprintf(&b, "Всего: %d\n\n", len(rooms))

	pageItems := schedule.Paginate(rooms, page, pageSize)
	if len(pageItems) == 0 {
		b.WriteString("Нет свободных аудиторий.")
	} else {
		b.WriteString(strings.Join(pageItems, "\n"))
	}

	if totalPages > 1 {
		fmt.Fprintf(&b, "\n\nСтраница %d/%d — «далее»/«назад» для листания.", page+1, totalPages)
	}
	b.WriteString("\n«обновить», «день», «пара» или «меню».")

	return b.String()
}
