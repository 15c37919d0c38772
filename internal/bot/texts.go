package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/m3rciful/vaultbot/core/telegram/format"
	"github.com/m3rciful/vaultbot/internal/catalog"
)

const (
	textMainMenu       = "🏠 Main menu"
	textRegistered     = "✅ Your account is registered.\nUse the buttons to navigate."
	textRegisterFirst  = "ℹ️ Register first: send /start and tap ✅ Register."
	textUnknownInput   = "🤔 I did not understand that. Use the menu below."
	textUnknownAction  = "This button is no longer supported."
	textGenericFailure = "⚠️ Something went wrong, please try again."
	textNotAllowed     = "🚫 Not allowed."
	textModsOnly       = "🚫 This command is for moderators."
	textAdminPointer   = "Open the admin panel with the 🛠️ Admin panel button."
	textCancelled      = "❎ Cancelled."
	textNothingToDo    = "Nothing to cancel."
	textNoResults      = "No results."
	textTrashEmpty     = "🗑️ The trash is empty."
	textPurgeConfirm   = "⚠️ This permanently deletes every item in the trash. Are you sure?"
	textEditChoose     = "What do you want to edit?"
	textSendName       = "✏️ Send the new name now:"
	textSendCaption    = "📝 Send the new caption now:"
	textSendKeyword    = "🔎 Send a search keyword:"
	textNoUsers        = "No users yet."
	textAdminPanel     = "🛠️ Admin panel"
	textRateLimited    = "⏳ Slow down a little."
)

// Hints sent when a flow receives the wrong kind of message.
const (
	hintUpload = "📎 Send a photo, video, audio file or document, or tap ❌ Cancel."
	hintText   = "⌨️ Send text, or tap ❌ Cancel."
)

func greetingText(isOwner bool) string {
	lines := []string{"👋 Welcome to the file vault bot."}
	if isOwner {
		lines = append(lines, "You are the owner and have full privileges.")
	}
	lines = append(lines, "", "Tap a button to get started:")
	return strings.Join(lines, "\n")
}

func profileText(u catalog.User, role catalog.Role) string {
	status := "not registered"
	if u.IsRegistered {
		status = "registered"
	}
	return format.Lines(
		format.Bold("👤 My account"),
		"",
		"Name: "+format.Escape(u.FullName),
		"Status: "+status,
		"Role: "+role.String(),
		"Since: "+u.CreatedAt.Format("2006-01-02"),
	)
}

func categoryText(cat catalog.Category) string {
	return "🔎 Category: " + format.Bold(cat.Label())
}

func listText(cat catalog.Category, page int) string {
	return fmt.Sprintf("📂 %s (page %d)", format.Bold(cat.Label()), page)
}

func emptyCategoryText(cat catalog.Category) string {
	return "No items in " + format.Bold(cat.Label()) + " yet."
}

func itemText(it catalog.Item) string {
	lines := []string{
		format.Bold(fmt.Sprintf("📦 Item #%d", it.ID)),
		"Type: " + it.Category.Label(),
		"Name: " + format.Escape(format.Deref(it.Name, "-")),
		"Caption: " + format.Escape(format.Deref(it.Caption, "-")),
		"Uploader: " + format.Code(strconv.FormatInt(it.UploaderID, 10)),
		"Added: " + it.CreatedAt.Format("2006-01-02 15:04"),
	}
	if it.Trashed() {
		deleted := "-"
		if it.DeletedAt != nil {
			deleted = it.DeletedAt.Format("2006-01-02 15:04")
		}
		lines = append(lines, "🗑️ In trash since "+deleted)
	}
	return strings.Join(lines, "\n")
}

func trashText(page int) string {
	return fmt.Sprintf("🗑️ Trash (page %d)", page)
}

func trashedText(it catalog.Item) string {
	return "🗑️ " + format.Escape(it.DisplayTitle()) + " moved to the trash."
}

func uploadPromptText(cat catalog.Category) string {
	return format.Lines(
		"⬆️ Send the item to upload into "+format.Bold(cat.Label())+" now.",
		format.Italic("(photo, video, file or audio according to the category)"),
	)
}

func uploadedText(it catalog.Item) string {
	return fmt.Sprintf("✅ Uploaded to %s as %s.", format.Bold(it.Category.Label()), format.Escape(it.DisplayTitle()))
}

func mismatchText(e *catalog.MismatchError) string {
	return fmt.Sprintf("⚠️ This looks like %s, not %s. Send a matching item or tap ❌ Cancel.",
		e.Detected.Label(), e.Target.Label())
}

func searchPromptText(cat *catalog.Category) string {
	if cat == nil {
		return textSendKeyword + " " + format.Italic("(all categories)")
	}
	return textSendKeyword + " " + format.Italic("("+cat.Label()+")")
}

func searchResultsText(keyword string, cat *catalog.Category, n int) string {
	scope := ""
	if cat != nil {
		scope = " in " + cat.Label()
	}
	return fmt.Sprintf("🔎 %d result(s)%s for %s", n, scope, format.Bold(keyword))
}

func usersText(page catalog.Page[catalog.User], ownerID int64) string {
	lines := []string{format.Bold(fmt.Sprintf("👥 Users (page %d)", page.Number))}
	for _, u := range page.Items {
		reg := "unregistered"
		if u.IsRegistered {
			reg = "registered"
		}
		role := "member"
		switch {
		case u.ID == ownerID:
			role = "owner"
		case u.IsModerator:
			role = "moderator"
		}
		name := u.FullName
		if name == "" {
			name = "-"
		}
		lines = append(lines, fmt.Sprintf("• %s (%s) | %s | %s",
			format.Escape(name), format.Code(strconv.FormatInt(u.ID, 10)), reg, role))
	}
	return strings.Join(lines, "\n")
}

func statsText(st catalog.Stats) string {
	lines := []string{
		format.Bold("📊 Statistics"),
		"",
		fmt.Sprintf("Total items: %d", st.Total),
		fmt.Sprintf("Active: %d", st.Active),
		fmt.Sprintf("In trash: %d", st.Trashed),
		"",
	}
	for _, c := range catalog.Categories {
		lines = append(lines, fmt.Sprintf("%s: %d", c.Label(), st.ByCategory[c]))
	}
	return strings.Join(lines, "\n")
}

func settingsText(ref, title string) string {
	lines := []string{
		format.Bold("⚙️ Channel settings"),
		"Current channel: " + format.Code(ref),
	}
	if title != "" {
		lines = append(lines, "Title: "+format.Escape(title))
	} else {
		lines = append(lines, "⚠️ The channel could not be reached.")
	}
	lines = append(lines, "Make sure the bot is an administrator of the channel.")
	return strings.Join(lines, "\n")
}
