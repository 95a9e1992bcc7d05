package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/Littlesheepxy/sourcing-copilot-go/internal/browser"
)

// fakeCardElement serves child nodes by selector, like a real list card.
type fakeCardElement struct {
	text     string
	attrs    map[string]string
	children map[string][]*fakeCardElement
}

func (f *fakeCardElement) Text(context.Context) (string, error) { return f.text, nil }

func (f *fakeCardElement) Attribute(_ context.Context, name string) (string, error) {
	return f.attrs[name], nil
}

func (f *fakeCardElement) Click(context.Context) error           { return nil }
func (f *fakeCardElement) Input(context.Context, string) error   { return nil }
func (f *fakeCardElement) Visible(context.Context) (bool, error) { return true, nil }

func (f *fakeCardElement) Find(ctx context.Context, selector string) (browser.Element, error) {
	els, _ := f.FindAll(ctx, selector)
	if len(els) == 0 {
		return nil, browser.ErrNotFound
	}
	return els[0], nil
}

func (f *fakeCardElement) FindAll(_ context.Context, selector string) ([]browser.Element, error) {
	children := f.children[selector]
	out := make([]browser.Element, 0, len(children))
	for _, c := range children {
		out = append(out, c)
	}
	return out, nil
}

func textNode(s string) *fakeCardElement { return &fakeCardElement{text: s} }

func TestCardSelectorStrategyReadsChildNodes(t *testing.T) {
	el := &fakeCardElement{
		text:  "张三\n期望：游戏策划\n网易游戏\n浙江大学\nUnity、数值策划",
		attrs: map[string]string{"data-geekid": "geek-42"},
		children: map[string][]*fakeCardElement{
			".name":                         {textNode("张三")},
			".join-text-wrap":               {textNode("期望：游戏策划")},
			".timeline-wrap.work-exps span": {textNode("网易游戏"), textNode("网易游戏")},
			".timeline-wrap.edu-exps span":  {textNode("浙江大学")},
			".tag-list span":                {textNode("Unity"), textNode("数值策划")},
		},
	}

	rec, err := (&cardSelectorStrategy{}).Extract(context.Background(), el)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if rec.Name != "张三" {
		t.Fatalf("name = %q, want 张三", rec.Name)
	}
	if rec.Position != "游戏策划" {
		t.Fatalf("position = %q, want the expectation label stripped", rec.Position)
	}
	if len(rec.Companies) != 1 || rec.Companies[0] != "网易游戏" {
		t.Fatalf("companies = %v, want deduplicated [网易游戏]", rec.Companies)
	}
	if len(rec.Schools) != 1 || rec.Schools[0] != "浙江大学" {
		t.Fatalf("schools = %v, want [浙江大学]", rec.Schools)
	}
	if len(rec.Skills) != 2 {
		t.Fatalf("skills = %v, want 2 entries", rec.Skills)
	}
	if rec.ID == "" {
		t.Fatal("expected a derived id")
	}
}

func TestCardSelectorStrategyFallsThroughOnUnknownLayout(t *testing.T) {
	el := &fakeCardElement{text: "李四 期望：角色原画"}

	_, err := (&cardSelectorStrategy{}).Extract(context.Background(), el)
	if !errors.Is(err, ErrInsufficient) {
		t.Fatalf("err = %v, want ErrInsufficient so the text strategy runs", err)
	}
}

func TestCardExtractorChainFallsBackToText(t *testing.T) {
	el := &fakeCardElement{text: "李四\n期望：角色原画"}

	rec, err := NewCardExtractor(nil).Extract(context.Background(), el)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if rec.Name != "李四" || rec.Position != "角色原画" {
		t.Fatalf("text fallback produced name=%q position=%q", rec.Name, rec.Position)
	}
}
