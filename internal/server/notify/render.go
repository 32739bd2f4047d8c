package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/kienohsung/an-ninh-noi-bo-final/internal/server/guests"
	"github.com/kienohsung/an-ninh-noi-bo-final/internal/telegram"
)

// Telegram rejects texts over 4096 characters; truncation leaves room
// for the ellipsis line.
const (
	maxMessageLen = 4096
	truncateAtLen = 4090
	fallbackName  = "Không rõ"
	separatorLine = "--------------------"
)

func esc(s string) string {
	return telegram.EscapeText(s)
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// renderPendingList builds the aggregate channel message: an all-clear
// note when nobody is waiting, otherwise a numbered roster.
func renderPendingList(pending []*guests.Guest, now time.Time) string {
	stamp := now.Format("15:04:05 02/01/2006")

	if len(pending) == 0 {
		return fmt.Sprintf("✅ <b>Tất cả khách đã được xác nhận vào.</b>\n<i>(Cập nhật lúc %s)</i>", stamp)
	}

	lines := []string{
		fmt.Sprintf("📢 <b>DANH SÁCH KHÁCH CHỜ VÀO (%d người)</b>\n<i>(Cập nhật lúc %s)</i>", len(pending), stamp),
	}
	for i, g := range pending {
		registeredBy := g.RegisteredByName
		if registeredBy == "" {
			registeredBy = fallbackName
		}
		lines = append(lines,
			separatorLine,
			fmt.Sprintf("%d - <b>%s</b> - %s", i+1, esc(g.FullName), esc(orNA(g.IDCardNumber))),
			fmt.Sprintf("   BKS: %s", esc(orNA(g.LicensePlate))),
			fmt.Sprintf("   NCC: %s", esc(orNA(g.SupplierName))),
			fmt.Sprintf("   Người ĐK: %s", esc(registeredBy)),
		)
	}
	lines = append(lines, separatorLine)

	return truncateMessage(strings.Join(lines, "\n"))
}

type eventTemplate struct {
	icon    string
	title   string
	byLabel string
}

var eventTemplates = map[guests.Event]eventTemplate{
	guests.EventNewRegistration:   {icon: "🆕", title: "KHÁCH MỚI ĐĂNG KÝ", byLabel: "Đăng ký bởi"},
	guests.EventFormRegistration:  {icon: "🆕", title: "KHÁCH MỚI ĐĂNG KÝ (GOOGLE FORM)", byLabel: "Đăng ký bởi"},
	guests.EventGroupRegistration: {icon: "🆕", title: "KHÁCH MỚI ĐĂNG KÝ (THEO ĐOÀN)", byLabel: "Đăng ký bởi"},
	guests.EventCheckIn:           {icon: "✅", title: "KHÁCH ĐÃ VÀO CỔNG", byLabel: "Xác nhận bởi"},
	guests.EventCheckOut:          {icon: "🚪", title: "KHÁCH ĐÃ RA CỔNG", byLabel: "Xác nhận bởi"},
	guests.EventNoShow:            {icon: "⚠️", title: "KHÁCH KHÔNG ĐẾN", byLabel: "Thực hiện bởi"},
}

// renderEvent builds one archive-channel message. Every event shares
// this routine; only icon, title and the closing attribution differ.
func renderEvent(g *guests.Guest, event guests.Event, actingName string, now time.Time) string {
	tpl, ok := eventTemplates[event]
	if !ok {
		tpl = eventTemplate{icon: "ℹ️", title: strings.ToUpper(string(event)), byLabel: "Thực hiện bởi"}
	}

	registeredBy := g.RegisteredByName
	if registeredBy == "" {
		registeredBy = fallbackName
	}
	if actingName == "" {
		actingName = fallbackName
	}

	lines := []string{
		fmt.Sprintf("%s <b>[SỰ KIỆN] %s</b>", tpl.icon, tpl.title),
		"",
		fmt.Sprintf("👤 <b>Khách:</b> %s (%s)", esc(g.FullName), esc(orNA(g.IDCardNumber))),
		fmt.Sprintf("📝 <b>Người ĐK:</b> %s", esc(registeredBy)),
		fmt.Sprintf("🚗 <b>BKS:</b> %s", esc(orNA(g.LicensePlate))),
		fmt.Sprintf("💼 <b>Đơn vị:</b> %s", esc(orNA(g.SupplierName))),
		fmt.Sprintf("📝 <b>Lý do:</b> %s", esc(orNA(g.Reason))),
		"",
		fmt.Sprintf("%s: %s (lúc %s)", tpl.byLabel, esc(actingName), now.Format("15:04 02/01/2006")),
	}

	return truncateMessage(strings.Join(lines, "\n"))
}

func truncateMessage(s string) string {
	runes := []rune(s)
	if len(runes) <= maxMessageLen {
		return s
	}
	return string(runes[:truncateAtLen]) + "\n..."
}
