// Package render builds the chat payloads posted by the bot: the daily
// question embed, its results variant, the two vote buttons, and the direct
// message embeds for the help and settime commands.
package render

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/diamondburned/arikawa/v3/discord"

	"github.com/tbourn/wyr-bot/internal/domain"
)

// Texts and styling shared by every embed.
const (
	NoQuestionText = "Aucune question trouvée."
	ErrorPrefix    = "Une erreur s'est produite : "

	QuestionTitle = "❤️ Tu préfères ?"
	AuthorName    = "Leskro Bot"
	FooterText    = "By Gabizoc"

	QuestionColor discord.Color = 0xD35400
	InfoColor     discord.Color = 0x009278

	authorIcon     = "https://i.postimg.cc/hvxD8XCT/0e396f4f93ecf9ca54fcb048fee23361-1.png"
	footerIcon     = "https://i.postimg.cc/1tFh2LpZ/Sans-titre.png"
	questionThumb  = "https://i.postimg.cc/tTPsG6yT/appreciated.png"
	errorThumb     = "https://i.postimg.cc/Ls8zPt2y/Design-sans-titre-6.png"
	validatedThumb = "https://i.postimg.cc/D03ZwdBp/Design-sans-titre-7.png"
	helpThumb      = "https://i.postimg.cc/hvxD8XCT/0e396f4f93ecf9ca54fcb048fee23361-1.png"
)

// Gauge segments.
const (
	Segments     = 10
	LeftSegment  = "🟧"
	RightSegment = "🟩"
)

// Gauge splits Segments between the two options. With no votes the split is
// 5/5; otherwise the left share is round(leftPct/10) and the right share is
// the remainder.
func Gauge(left, right int) (leftSeg, rightSeg int) {
	if left+right <= 0 {
		return Segments / 2, Segments / 2
	}
	leftPct, _ := Percentages(left, right)
	leftSeg = int(math.Round(leftPct / (100 / Segments)))
	return leftSeg, Segments - leftSeg
}

// GaugeBar renders the gauge, right segments first.
func GaugeBar(left, right int) string {
	l, r := Gauge(left, right)
	return strings.Repeat(RightSegment, r) + strings.Repeat(LeftSegment, l)
}

// Percentages returns each option's share of the total in [0,100]; both are
// zero when nobody voted.
func Percentages(left, right int) (leftPct, rightPct float64) {
	total := left + right
	if total == 0 {
		return 0, 0
	}
	return float64(left) / float64(total) * 100, float64(right) / float64(total) * 100
}

// FormatPercentage formats p with one decimal, e.g. "66.7%".
func FormatPercentage(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

func author() *discord.EmbedAuthor {
	return &discord.EmbedAuthor{Name: AuthorName, Icon: authorIcon}
}

func footer() *discord.EmbedFooter {
	return &discord.EmbedFooter{Text: FooterText, Icon: footerIcon}
}

func questionBody(q domain.Question) string {
	return fmt.Sprintf("🏷️ **Catégorie :** *%s*\n\n➡️ %s", q.Category, q.Text)
}

// QuestionEmbed is the freshly posted daily question.
func QuestionEmbed(q domain.Question, now time.Time) discord.Embed {
	return discord.Embed{
		Title:       QuestionTitle,
		Description: questionBody(q),
		Thumbnail:   &discord.EmbedThumbnail{URL: questionThumb},
		Author:      author(),
		Footer:      footer(),
		Color:       QuestionColor,
		Timestamp:   discord.NewTimestamp(now),
	}
}

// Results renders the tally line: right count, gauge, left count.
func Results(v domain.Vote) string {
	leftPct, rightPct := Percentages(v.Left, v.Right)
	return fmt.Sprintf(" %d vote(s) *(%s)* %s %d vote(s) *(%s)*",
		v.Right, FormatPercentage(rightPct),
		GaugeBar(v.Left, v.Right),
		v.Left, FormatPercentage(leftPct),
	)
}

// ResultsEmbed is the question embed re-rendered with the current tally.
func ResultsEmbed(v domain.Vote, now time.Time) discord.Embed {
	e := QuestionEmbed(domain.Question{Text: v.Question, Category: v.Category}, now)
	e.Description += "\n\n**🗳️ Résultats :**\n" + Results(v)
	return e
}

// VoteButtons returns the action row carrying the two options.
func VoteButtons() discord.ContainerComponents {
	return discord.ContainerComponents{
		&discord.ActionRowComponent{
			&discord.ButtonComponent{
				CustomID: discord.ComponentID(domain.OptionYes),
				Style:    discord.SuccessButtonStyle(),
				Emoji:    &discord.ComponentEmoji{Name: "1️⃣"},
			},
			&discord.ButtonComponent{
				CustomID: discord.ComponentID(domain.OptionNo),
				Style:    discord.DangerButtonStyle(),
				Emoji:    &discord.ComponentEmoji{Name: "2️⃣"},
			},
		},
	}
}

// HelpEmbed lists the commands. botID is mentioned as the required prefix.
func HelpEmbed(botID discord.UserID, now time.Time) discord.Embed {
	mention := "le bot"
	if botID.IsValid() {
		mention = botID.Mention()
	}
	return discord.Embed{
		Title:       "📋 Menu d'aide :",
		Description: fmt.Sprintf("➡️ Voici toutes les commandes disponibles de %s :", mention),
		Fields: []discord.EmbedField{
			{Name: "Start", Value: `Envoie une question "tu préfères ?"`, Inline: true},
			{Name: "Help", Value: "Envoie le menu d'aide", Inline: true},
			{Name: "SetTime", Value: "Permet de définir l'heure de la question quotidienne (0-23)", Inline: true},
			{Name: "ℹ️ Note :", Value: fmt.Sprintf("***Toutes** les commandes doivent commencer par %s*", mention)},
		},
		Thumbnail: &discord.EmbedThumbnail{URL: helpThumb},
		Author:    author(),
		Footer:    footer(),
		Color:     InfoColor,
		Timestamp: discord.NewTimestamp(now),
	}
}

// SetTimeErrorEmbed explains the settime usage after an invalid hour.
func SetTimeErrorEmbed(now time.Time) discord.Embed {
	return discord.Embed{
		Title: "❌ Erreur :",
		Description: "⏱️ Veuillez fournir une __heure valide__ pour la planification *(0-23)*." +
			"\n\n**Usage :** `SetTime {heure}`" +
			"\n*ex : `SetTime 8`*",
		Thumbnail: &discord.EmbedThumbnail{URL: errorThumb},
		Author:    author(),
		Footer:    footer(),
		Color:     InfoColor,
		Timestamp: discord.NewTimestamp(now),
	}
}

// SetTimeOKEmbed confirms the new daily hour.
func SetTimeOKEmbed(hour int, now time.Time) discord.Embed {
	return discord.Embed{
		Title:       "✅ Validé :",
		Description: fmt.Sprintf("⏱️ L'heure de la question quotidienne a bien été mise à jour à : **%dh**", hour),
		Thumbnail:   &discord.EmbedThumbnail{URL: validatedThumb},
		Author:      author(),
		Footer:      footer(),
		Color:       InfoColor,
		Timestamp:   discord.NewTimestamp(now),
	}
}

// ErrorText is the direct message sent to the error recipient.
func ErrorText(err error) string {
	return ErrorPrefix + err.Error()
}
