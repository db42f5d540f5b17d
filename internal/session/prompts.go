package session

import (
	"fmt"
	"strings"

	"github.com/ytget/leech-bot/internal/model"
)

// Display limits for link listings
const (
	MaxListedURLLength = 70
	URLTruncateSuffix  = "..."
)

// Static reply texts
const (
	MsgWelcome = "📘 Text Leech Bot ready!\n\n" +
		"Send /pw to start — then upload a text file containing video or PDF URLs.\n" +
		"Each line can have any text, links are detected automatically."

	MsgSendFile = "📄 Please send your text file (.txt). Video and PDF URLs will be extracted from it."

	MsgUnexpectedFile = "I wasn't expecting a file. Send /pw to start."

	MsgNoSession = "Send /pw to start."

	MsgSessionInProgress = "A download flow is already in progress. Finish it or send /cancel first."

	MsgBusy = "⏳ Still working on your previous message. Please wait."

	MsgDispatchInProgress = "⏳ A download is in progress. Please wait for it to finish."

	MsgNoURLs = "⚠️ No valid URLs found! Ensure each link starts with http(s)."

	MsgBadIndex = "⚠️ Please send a valid number from the list."

	MsgIndexOutOfRange = "Index out of range. Try again."

	MsgEmptyBatchName = "The name can't be empty. Send a batch/name for this download."

	MsgAskToken = "Send your access token (used for the resolver API). Keep it private."

	MsgEmptyToken = "The token can't be empty. Send your access token."

	MsgDownloadStarted = "⏳ Download started... please wait, the file will be uploaded once ready."

	MsgCancelled = "Session cancelled. Send /pw to start over."

	MsgCancelledWhileDispatching = "Session closed. The running download can't be aborted; its result will still arrive."

	MsgNothingToCancel = "Nothing to cancel. Send /pw to start."

	MsgExpired = "Session expired after inactivity. Send /pw to start again."

	MsgFlowHint = "Follow the flow: /pw → send file → choose index → set name → quality → token."
)

// summaryMessage renders the classified link list with counts and the
// instruction to reply with an index.
func summaryMessage(links []model.LinkRecord, summary model.ClassificationSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Found %d URLs — %s.\n\n", len(links), summary)
	for _, link := range links {
		fmt.Fprintf(&b, "%d. [%s] %s\n", link.Index, link.Kind.Label(), truncateURL(link.RawURL))
	}
	b.WriteString("\n💡 Reply with the number of the link you want to download (e.g. 1).")
	return b.String()
}

// selectionMessage confirms the chosen link and asks for the batch name
func selectionMessage(link model.LinkRecord) string {
	return fmt.Sprintf("Selected URL #%d:\n%s\n\nNow send a batch/name for this download.", link.Index, link.RawURL)
}

// qualityPrompt asks for one of the accepted quality choices
func qualityPrompt(choices []string) string {
	return fmt.Sprintf("Select quality — reply with %s.", strings.Join(choices, " or "))
}

// invalidQualityMessage lists the accepted quality choices after bad input
func invalidQualityMessage(choices []string) string {
	return fmt.Sprintf("Please reply with exactly %s.", strings.Join(choices, " or "))
}

// failureMessage names the stage a terminal dispatch failure happened in
func failureMessage(stage string, err error) string {
	return fmt.Sprintf("❌ Download failed (%s): %v\n\nSend /pw to start over.", stage, err)
}

func truncateURL(raw string) string {
	runes := []rune(raw)
	if len(runes) <= MaxListedURLLength {
		return raw
	}
	return string(runes[:MaxListedURLLength]) + URLTruncateSuffix
}
