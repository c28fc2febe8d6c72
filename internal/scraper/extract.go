package scraper

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rbenali/matchmirror/internal/match"
	"golang.org/x/net/html"
)

var (
	teamClassRe    = regexp.MustCompile(`(team|club)`)
	firstScoreRe   = regexp.MustCompile(`first-team-result`)
	secondScoreRe  = regexp.MustCompile(`second-team-result`)
	liveStatusRe   = regexp.MustCompile(`live-match-status`)
	resultStatusRe = regexp.MustCompile(`result-status-text`)
	finishedRe     = regexp.MustCompile(`إنتهت|نهاية|Full Time`)
	infoLabelRe    = regexp.MustCompile(`البطولة|الجولة|ملعب|وقت|تاريخ`)
	digitsRe       = regexp.MustCompile(`^[0-9]+$`)
)

// channelsHeader marks the broadcast section on detail pages.
const channelsHeader = "القنوات الناقلة والمعلقين"

// infoLabels maps the Arabic attribute labels to record info keys.
var infoLabels = []struct {
	label string
	key   string
}{
	{"البطولة", match.InfoChampionship},
	{"الجولة", match.InfoRound},
	{"ملعب المباراة", match.InfoStadium},
	{"وقت المباراة", match.InfoTime},
	{"تاريخ المباراة", match.InfoDate},
}

// Extract populates a match.Record from one parsed detail page. Every field
// group degrades independently: a page missing teams, score, or channels
// still produces a record with the corresponding fallbacks filled in.
func Extract(doc *goquery.Document, pageURL string) match.Record {
	rec := match.NewRecord(pageURL)

	if m := matchLinkRe.FindStringSubmatch(pageURL); m != nil {
		rec.ID = m[1]
	}

	extractTeams(doc, &rec)
	extractInfo(doc, &rec)
	rec.Info[match.InfoScore] = extractScore(doc)
	rec.Info[match.InfoStatus] = extractStatus(doc)
	extractChannels(doc, &rec)

	return rec
}

// extractTeams takes the first two team/club containers holding an image as
// the home and away sides. Pages without that structure (cup finals, special
// layouts) fall back to the document title.
func extractTeams(doc *goquery.Document, rec *match.Record) {
	var teams []*goquery.Selection
	doc.Find("div").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !teamClassRe.MatchString(s.AttrOr("class", "")) {
			return true
		}
		if s.Find("img").Length() == 0 {
			return true
		}
		teams = append(teams, s)
		return len(teams) < 2
	})

	if len(teams) >= 2 {
		rec.Teams.Home = &match.Team{
			Name: cleanText(teams[0].Text()),
			Logo: teams[0].Find("img").First().AttrOr("src", ""),
		}
		rec.Teams.Away = &match.Team{
			Name: cleanText(teams[1].Text()),
			Logo: teams[1].Find("img").First().AttrOr("src", ""),
		}
		return
	}

	title := cleanText(doc.Find("title").First().Text())
	if title == "" {
		title = match.FallbackTitle
	}
	rec.Teams.FullTitle = title
}

// extractInfo scans for the five labeled attributes. The value for a label is
// resolved by, in priority order: the label container's next sibling element,
// a "value"-classed descendant, or the container's own text with the label
// removed. Kickoff times go through the normalizer.
func extractInfo(doc *goquery.Document, rec *match.Record) {
	scope := doc.Find("div.match-info").First()
	if scope.Length() == 0 {
		scope = doc.Selection
	}

	scope.Find("*").Each(func(_ int, s *goquery.Selection) {
		text := cleanText(ownText(s))
		if text == "" || !infoLabelRe.MatchString(text) {
			return
		}
		for _, entry := range infoLabels {
			if !strings.Contains(text, entry.label) {
				continue
			}
			val := labelValue(s, entry.label)
			if entry.key == match.InfoTime {
				val = match.NormalizeKickoff(val)
			}
			rec.Info[entry.key] = val
		}
	})
}

// labelValue resolves the value belonging to a label container.
func labelValue(label *goquery.Selection, labelText string) string {
	if next := label.Next(); next.Length() > 0 {
		if v := cleanText(next.Text()); v != "" {
			return v
		}
	}
	if span := label.Find("span.value").First(); span.Length() > 0 {
		if v := cleanText(span.Text()); v != "" {
			return v
		}
	}
	return cleanText(strings.ReplaceAll(label.Text(), labelText, ""))
}

// extractScore reads the per-team result elements, accepting them only when
// both are purely numeric, then falls back to the first two bold children of
// the main result container. Anything else keeps the unknown-score sentinel.
func extractScore(doc *goquery.Document) string {
	home := findByClass(doc, firstScoreRe)
	away := findByClass(doc, secondScoreRe)

	if home != nil && away != nil {
		h, a := cleanText(home.Text()), cleanText(away.Text())
		if digitsRe.MatchString(h) && digitsRe.MatchString(a) {
			return h + " - " + a
		}
		return match.ScoreUnknown
	}

	if main := doc.Find("div.main-result").First(); main.Length() > 0 {
		bold := main.Find("b")
		if bold.Length() >= 2 {
			return cleanText(bold.Eq(0).Text()) + " - " + cleanText(bold.Eq(1).Text())
		}
	}

	return match.ScoreUnknown
}

// statusStrategy is one attempt at reading the match status; it returns the
// empty string when its markup is absent.
type statusStrategy func(*goquery.Document) string

var statusChain = []statusStrategy{
	statusFromFinishedKeywords,
	statusFromLiveElement,
	statusFromResultText,
}

// extractStatus runs the status strategies in order and keeps the first
// non-empty result. A colon in the final status means a strategy picked up a
// kickoff time instead of a status, so it is rewritten to the not-started
// sentinel no matter which strategy produced it.
func extractStatus(doc *goquery.Document) string {
	status := ""
	for _, strat := range statusChain {
		if status = strat(doc); status != "" {
			break
		}
	}
	if status == "" || strings.Contains(status, ":") {
		status = match.StatusNotStarted
	}
	return status
}

func statusFromFinishedKeywords(doc *goquery.Document) string {
	if finishedRe.MatchString(doc.Text()) {
		return match.StatusFinished
	}
	return ""
}

func statusFromLiveElement(doc *goquery.Document) string {
	live := findByClassTag(doc, "span", liveStatusRe)
	if live == nil {
		return ""
	}
	return cleanText(live.Text())
}

func statusFromResultText(doc *goquery.Document) string {
	status := ""
	doc.Find("span").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !resultStatusRe.MatchString(s.AttrOr("class", "")) {
			return true
		}
		text := s.Text()
		if strings.TrimSpace(text) == "" || strings.Contains(text, ":") {
			return true
		}
		status = cleanText(text)
		return false
	})
	return status
}

// extractChannels locates the broadcast section by its header, collecting the
// title/content pair of each sub-row. Pages without the section fall back to a
// single bare commentator/channel label pair.
func extractChannels(doc *goquery.Document, rec *match.Record) {
	header := findByText(doc, func(text string) bool {
		return strings.Contains(text, channelsHeader)
	})
	if header != nil {
		block := header.Closest("div.match-block-item")
		if block.Length() > 0 {
			block.Find("div.match-info-item.sub").Each(func(_ int, row *goquery.Selection) {
				ch := match.Channel{Channel: match.Unspecified, Commentator: match.Unspecified}
				if title := row.Find("div.title").First(); title.Length() > 0 {
					ch.Channel = cleanText(title.Text())
				}
				if content := row.Find("div.content").First(); content.Length() > 0 {
					ch.Commentator = cleanText(content.Text())
				}
				rec.Channels = append(rec.Channels, ch)
			})
		}
	}

	if len(rec.Channels) > 0 {
		return
	}

	commentator := findByText(doc, func(text string) bool {
		return strings.TrimSpace(text) == "المعلق"
	})
	channel := findByText(doc, func(text string) bool {
		return strings.TrimSpace(text) == "القناة"
	})
	if commentator == nil || channel == nil {
		return
	}
	chValue := channel.Next()
	commValue := commentator.Next()
	if chValue.Length() == 0 || commValue.Length() == 0 {
		return
	}
	rec.Channels = append(rec.Channels, match.Channel{
		Channel:     cleanText(chValue.Text()),
		Commentator: cleanText(commValue.Text()),
	})
}

// findByClass returns the first div, then span, whose class matches re.
func findByClass(doc *goquery.Document, re *regexp.Regexp) *goquery.Selection {
	if s := findByClassTag(doc, "div", re); s != nil {
		return s
	}
	return findByClassTag(doc, "span", re)
}

func findByClassTag(doc *goquery.Document, tag string, re *regexp.Regexp) *goquery.Selection {
	var found *goquery.Selection
	doc.Find(tag).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if re.MatchString(s.AttrOr("class", "")) {
			found = s
			return false
		}
		return true
	})
	return found
}

// findByText returns the first element whose direct text content satisfies ok.
func findByText(doc *goquery.Document, ok func(string) bool) *goquery.Selection {
	var found *goquery.Selection
	doc.Find("*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if ok(ownText(s)) {
			found = s
			return false
		}
		return true
	})
	return found
}

// ownText collects only the direct child text nodes of a selection, without
// descendant element text.
func ownText(s *goquery.Selection) string {
	var b strings.Builder
	for _, n := range s.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			}
		}
	}
	return b.String()
}

// cleanText normalizes scraped text: trimmed, newlines flattened, runs of
// spaces collapsed.
func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.TrimSpace(s)
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	return s
}
