package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kienohsung/an-ninh-noi-bo-final/internal/server/guests"
)

var renderNow = time.Date(2026, 8, 25, 14, 30, 45, 0, time.UTC)

func TestRenderPendingList_AllClear(t *testing.T) {
	text := renderPendingList(nil, renderNow)

	assert.Contains(t, text, "Tất cả khách đã được xác nhận vào.")
	assert.Contains(t, text, "14:30:45 25/08/2026")
}

func TestRenderPendingList_Roster(t *testing.T) {
	pending := []*guests.Guest{
		{FullName: "Nguyễn Văn A", IDCardNumber: "0123", LicensePlate: "51F-123.45",
			SupplierName: "ACME", RegisteredByName: "Trần Thị C"},
		{FullName: "Lê Văn B"},
	}
	text := renderPendingList(pending, renderNow)

	assert.Contains(t, text, "DANH SÁCH KHÁCH CHỜ VÀO (2 người)")
	assert.Contains(t, text, "1 - <b>Nguyễn Văn A</b> - 0123")
	assert.Contains(t, text, "BKS: 51F-123.45")
	assert.Contains(t, text, "NCC: ACME")
	assert.Contains(t, text, "Người ĐK: Trần Thị C")

	// Missing fields fall back rather than render empty.
	assert.Contains(t, text, "2 - <b>Lê Văn B</b> - N/A")
	assert.Contains(t, text, "Người ĐK: Không rõ")
}

func TestRenderPendingList_EscapesHTML(t *testing.T) {
	pending := []*guests.Guest{
		{FullName: "A <&> B", RegisteredByName: "C"},
	}
	text := renderPendingList(pending, renderNow)

	assert.Contains(t, text, "A &lt;&amp;&gt; B")
	assert.NotContains(t, text, "A <&> B")
}

func TestRenderPendingList_Truncates(t *testing.T) {
	var pending []*guests.Guest
	for i := 0; i < 200; i++ {
		pending = append(pending, &guests.Guest{
			FullName:         strings.Repeat("x", 40),
			RegisteredByName: "C",
		})
	}
	text := renderPendingList(pending, renderNow)

	assert.LessOrEqual(t, len([]rune(text)), maxMessageLen)
	assert.True(t, strings.HasSuffix(text, "\n..."))
}

func TestRenderEvent_Templates(t *testing.T) {
	g := &guests.Guest{
		FullName: "Nguyễn Văn A", IDCardNumber: "0123", LicensePlate: "51F-123.45",
		SupplierName: "ACME", Reason: "Giao hàng", RegisteredByName: "Trần Thị C",
	}

	tests := []struct {
		event   guests.Event
		title   string
		byLabel string
	}{
		{guests.EventNewRegistration, "KHÁCH MỚI ĐĂNG KÝ", "Đăng ký bởi"},
		{guests.EventFormRegistration, "KHÁCH MỚI ĐĂNG KÝ (GOOGLE FORM)", "Đăng ký bởi"},
		{guests.EventGroupRegistration, "KHÁCH MỚI ĐĂNG KÝ (THEO ĐOÀN)", "Đăng ký bởi"},
		{guests.EventCheckIn, "KHÁCH ĐÃ VÀO CỔNG", "Xác nhận bởi"},
		{guests.EventCheckOut, "KHÁCH ĐÃ RA CỔNG", "Xác nhận bởi"},
		{guests.EventNoShow, "KHÁCH KHÔNG ĐẾN", "Thực hiện bởi"},
	}
	for _, tt := range tests {
		t.Run(string(tt.event), func(t *testing.T) {
			text := renderEvent(g, tt.event, "Phạm Văn D", renderNow)

			assert.Contains(t, text, "[SỰ KIỆN] "+tt.title)
			assert.Contains(t, text, "Khách:</b> Nguyễn Văn A (0123)")
			assert.Contains(t, text, "Người ĐK:</b> Trần Thị C")
			assert.Contains(t, text, "BKS:</b> 51F-123.45")
			assert.Contains(t, text, "Đơn vị:</b> ACME")
			assert.Contains(t, text, "Lý do:</b> Giao hàng")
			assert.Contains(t, text, tt.byLabel+": Phạm Văn D (lúc 14:30 25/08/2026)")
		})
	}
}

func TestRenderEvent_FallbackActingName(t *testing.T) {
	g := &guests.Guest{FullName: "A"}
	text := renderEvent(g, guests.EventNoShow, "", renderNow)

	assert.Contains(t, text, "Thực hiện bởi: Không rõ")
}
