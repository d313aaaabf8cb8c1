package douban

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/lepinkainen/doubanmeta/internal/metadata"
)

// The #info block on a detail page is a flat run of label spans, text nodes,
// anchors and <br> separators. Labels are parsed by name so reordered or
// missing lines don't shift values into the wrong fields.
const (
	labelAuthor     = "作者"
	labelPublisher  = "出版社"
	labelProducer   = "出品方"
	labelSubtitle   = "副标题"
	labelTranslator = "译者"
	labelPubDate    = "出版年"
	labelPages      = "页数"
	labelPrice      = "定价"
	labelSeries     = "丛书"
	labelISBN       = "ISBN"
	labelUnifiedNum = "统一书号"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// FetchBook fetches and parses the detail page for a subject ID.
func (c *Client) FetchBook(ctx context.Context, subjectID string) (*metadata.Book, error) {
	detailURL := c.BookURL(subjectID)
	slog.Debug("Fetching book details", "subject_id", subjectID, "url", detailURL)

	doc, err := c.getDocument(ctx, detailURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch book %s: %w", subjectID, err)
	}

	book, err := parseBookPage(doc, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse book %s: %w", subjectID, err)
	}
	return book, nil
}

// parseBookPage extracts a metadata record from a parsed detail page.
func parseBookPage(doc *goquery.Document, subjectID string) (*metadata.Book, error) {
	title := metadata.CleanTitle(doc.Find("h1 span[property='v:itemreviewed']").First().Text())
	if title == "" {
		title = metadata.CleanTitle(doc.Find("h1").First().Text())
	}
	if title == "" {
		return nil, fmt.Errorf("detail page has no title")
	}

	book := &metadata.Book{
		Title:     title,
		SubjectID: subjectID,
	}

	fields := parseInfoBlock(doc.Find("#info").First())
	applyInfoFields(book, fields)

	if rating := doc.Find("strong.rating_num").First().Text(); rating != "" {
		// Douban rates on a 10-point scale
		if avg, err := strconv.ParseFloat(strings.TrimSpace(rating), 64); err == nil && avg > 0 {
			book.Rating = avg / 2.0
		}
	}

	doc.Find("a.tag").Each(func(_ int, sel *goquery.Selection) {
		if tag := strings.TrimSpace(sel.Text()); tag != "" {
			book.Tags = append(book.Tags, tag)
		}
	})

	book.Description = parseDescription(doc)

	if src, ok := doc.Find("#mainpic img").First().Attr("src"); ok {
		// Placeholder images mean the book has no real cover
		if !strings.Contains(src, "book-default") {
			book.CoverURL = src
		}
	}

	return book, nil
}

// infoField is one "label: value" line from the #info block.
type infoField struct {
	label string
	text  string
	links []string
}

// parseInfoBlock walks the child nodes of #info and groups them into
// labeled fields. A field starts at a label span and ends at a <br>.
// Author and translator lines nest their label and anchors inside an
// outer span; the other lines put the label span directly in #info.
func parseInfoBlock(info *goquery.Selection) []infoField {
	var fields []infoField
	var cur *infoField

	appendField := func(f infoField) {
		fields = append(fields, f)
		cur = &fields[len(fields)-1]
	}

	info.Contents().Each(func(_ int, sel *goquery.Selection) {
		switch goquery.NodeName(sel) {
		case "br":
			cur = nil
		case "span":
			if sel.HasClass("pl") {
				appendField(infoField{label: cleanLabel(sel.Text())})
				return
			}
			if nested := sel.Find("span.pl").First(); nested.Length() > 0 {
				f := infoField{label: cleanLabel(nested.Text())}
				sel.Find("a").Each(func(_ int, a *goquery.Selection) {
					if v := cleanValue(a.Text()); v != "" {
						f.links = append(f.links, v)
					}
				})
				f.text = cleanValue(strings.TrimPrefix(cleanValue(sel.Text()), f.label))
				f.text = strings.TrimLeft(f.text, ": ：")
				appendField(f)
				cur = nil // nested spans are self-contained lines
				return
			}
			if cur != nil {
				cur.text += sel.Text()
			}
		case "a":
			if cur != nil {
				if v := cleanValue(sel.Text()); v != "" {
					cur.links = append(cur.links, v)
				}
			}
		case "#text":
			if cur != nil {
				cur.text += sel.Text()
			}
		}
	})

	for i := range fields {
		fields[i].text = cleanValue(fields[i].text)
	}
	return fields
}

// applyInfoFields maps parsed #info fields onto the book record.
func applyInfoFields(book *metadata.Book, fields []infoField) {
	var isbnCandidates []string

	for _, f := range fields {
		switch f.label {
		case labelAuthor:
			book.Authors = append(book.Authors, fieldValues(f)...)
		case labelTranslator:
			book.Translators = append(book.Translators, fieldValues(f)...)
		case labelPublisher:
			book.Publisher = fieldValue(f)
		case labelProducer:
			book.Producer = fieldValue(f)
		case labelSubtitle:
			book.Subtitle = fieldValue(f)
		case labelSeries:
			book.Series = fieldValue(f)
		case labelPrice:
			book.Price = fieldValue(f)
		case labelPages:
			if pages, err := strconv.Atoi(strings.TrimSuffix(fieldValue(f), "页")); err == nil {
				book.Pages = pages
			}
		case labelPubDate:
			if date, err := metadata.ParsePubDate(fieldValue(f)); err == nil {
				book.PubDate = date
			} else {
				slog.Debug("Unparseable pubdate", "subject_id", book.SubjectID, "value", fieldValue(f))
			}
		case labelISBN, labelUnifiedNum:
			isbnCandidates = append(isbnCandidates, strings.Fields(fieldValue(f))...)
		}
	}

	book.SetISBNs(isbnCandidates)
}

// fieldValues returns the anchor texts of a field, falling back to its text.
func fieldValues(f infoField) []string {
	if len(f.links) > 0 {
		return f.links
	}
	if f.text != "" {
		return []string{f.text}
	}
	return nil
}

// fieldValue returns the single best value for a field.
func fieldValue(f infoField) string {
	if f.text != "" {
		return f.text
	}
	if len(f.links) > 0 {
		return f.links[0]
	}
	return ""
}

// parseDescription pulls the book introduction, preferring the full text in
// #link-report over author blurbs elsewhere on the page.
func parseDescription(doc *goquery.Document) string {
	intro := doc.Find("#link-report .intro").Last()
	if intro.Length() == 0 {
		intro = doc.Find("div.intro").First()
	}

	var paragraphs []string
	intro.Find("p").Each(func(_ int, p *goquery.Selection) {
		if text := strings.TrimSpace(p.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	if len(paragraphs) == 0 {
		return strings.TrimSpace(intro.Text())
	}
	return strings.Join(paragraphs, "\n\n")
}

func cleanLabel(label string) string {
	label = strings.TrimSpace(label)
	label = strings.TrimRight(label, ": ：")
	return strings.TrimSpace(label)
}

func cleanValue(value string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(value, " "))
}
