package extract

import (
	"strings"
	"testing"
)

const cardFixture = `张小明  5年
期望：海外市场策划专员
腾讯科技有限公司 市场专员
北京大学 市场营销
用户增长，活动策划，数据分析`

func TestParseCardTextFixture(t *testing.T) {
	t.Parallel()

	rec := parseCardText(cardFixture)

	if rec.Name != "张小明" {
		t.Fatalf("expected name 张小明, got %q", rec.Name)
	}
	if rec.Position != "海外市场策划专员" {
		t.Fatalf("expected position from 期望 line, got %q", rec.Position)
	}
	if len(rec.Companies) != 1 || !strings.Contains(rec.Companies[0], "腾讯") {
		t.Fatalf("expected one company containing 腾讯, got %v", rec.Companies)
	}
	if len(rec.Schools) != 1 || rec.Schools[0] != "北京大学" {
		t.Fatalf("expected 北京大学, got %v", rec.Schools)
	}
	if len(rec.Skills) != 3 {
		t.Fatalf("expected 3 skills, got %v", rec.Skills)
	}
	if rec.FullText == "" {
		t.Fatalf("expected full text to be retained")
	}
}

func TestParseCardTextEmpty(t *testing.T) {
	t.Parallel()

	rec := parseCardText("   \n  ")
	if rec.Usable() {
		t.Fatalf("empty text must not yield a usable record")
	}
}

func TestNormalizeText(t *testing.T) {
	t.Parallel()

	got := NormalizeText("  a   b  \n\n\n  c\t d ")
	if got != "a b\nc d" {
		t.Fatalf("unexpected normalization: %q", got)
	}
}

func TestParseCompaniesOrderPreserved(t *testing.T) {
	t.Parallel()

	text := "网易游戏 策划\n米哈游网络科技 资深策划"
	companies := ParseCompanies(text)
	if len(companies) != 2 {
		t.Fatalf("expected 2 companies, got %v", companies)
	}
	// Resume order = text order.
	if !strings.Contains(companies[0], "网易") || !strings.Contains(companies[1], "米哈游") {
		t.Fatalf("order not preserved: %v", companies)
	}
}

func TestParseSkillsIgnoresProse(t *testing.T) {
	t.Parallel()

	lines := []string{
		"负责公司海外市场的整体推广规划，完成了多个大型项目的落地执行，主导跨部门协作并推动了品牌在东南亚地区的持续增长",
		"Python/SQL/Excel",
	}
	skills := ParseSkills(lines)
	if len(skills) != 3 {
		t.Fatalf("expected 3 skills from tag line only, got %v", skills)
	}
}
