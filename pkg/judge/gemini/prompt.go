package gemini

import (
	"detector/pkg/judge"
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxPromptPageChars bounds the page text embedded in a prompt.
const maxPromptPageChars = 6000

func contentPrompt(req judge.ContentRequest, illegalKeywords []string) string {
	var b strings.Builder

	if req.Social {
		b.WriteString("Analyze the following social media post. It was found by a reverse image search " +
			"for a page of a published book or comic.\n\n")
	} else {
		b.WriteString("Analyze the following web page. It was found by a reverse image search " +
			"for a page of a published book or comic.\n\n")
	}

	fmt.Fprintf(&b, "URL: %s\n", req.URL)
	if req.Domain != "" {
		fmt.Fprintf(&b, "Domain: %s (%s)\n", req.Domain, req.DomainType)
	}
	if req.SocialInfo != nil {
		fmt.Fprintf(&b, "Platform: %s\n", req.SocialInfo.Platform)
		if req.SocialInfo.Handle != "" {
			fmt.Fprintf(&b, "Account: @%s\n", req.SocialInfo.Handle)
		}
		if req.SocialInfo.PostID != "" {
			fmt.Fprintf(&b, "Post ID: %s\n", req.SocialInfo.PostID)
		}
		fmt.Fprintf(&b, "Context: %s\n", req.SocialInfo.Description)
	}
	if req.PageTitle != "" {
		fmt.Fprintf(&b, "Title: %s\n", req.PageTitle)
	}
	if req.PageText != "" {
		fmt.Fprintf(&b, "Content:\n%s\n", truncate(req.PageText, maxPromptPageChars))
	} else {
		b.WriteString("Content: (the page content could not be retrieved; judge from the URL)\n")
	}

	if len(illegalKeywords) > 0 {
		fmt.Fprintf(&b, "\nCheck whether any of these keywords appear: %s\n", strings.Join(illegalKeywords, ", "))
	}

	b.WriteString("\nUse these criteria:\n")
	if req.Social {
		b.WriteString("1. Post from the official publisher or author account -> ○\n" +
			"2. Reader impressions, reviews or recommendations quoting a small excerpt -> ○\n" +
			"3. Promotion of illegal uploads or pirated copies -> ×\n" +
			"4. Many page images reposted without permission -> ×\n" +
			"5. Partial reposts whose intent is unclear -> △\n" +
			"6. Not enough information to decide -> ?\n")
	} else {
		b.WriteString("1. Obvious piracy site offering illegal downloads -> ×\n" +
			"2. Unauthorized reposting for commercial use -> ×\n" +
			"3. Clear copyright infringement -> ×\n" +
			"4. Reposting that may be infringing but is not conclusive -> △\n" +
			"5. No sign of infringement -> ○\n" +
			"6. Only images with nothing to judge -> ?\n")
	}

	b.WriteString("\nAnswer with exactly these lines:\n" +
		"VERDICT: [○/△/×/?]\n" +
		"REASON: [one or two sentences explaining the verdict]\n" +
		"NOTE: [optional supplementary remark, or leave empty]\n")

	return b.String()
}

func comparisonPrompt(req judge.ImageComparisonRequest) string {
	var b strings.Builder

	b.WriteString("The first image is the original uploaded by the rights holder.\n")
	if len(req.Reference) > 0 {
		b.WriteString("The second image was taken from the candidate page below.\n")
	}
	fmt.Fprintf(&b, "Candidate URL: %s\n\n", req.CandidateURL)
	b.WriteString("Decide whether the candidate shows the same picture as the original.\n" +
		"- identical: the same image, possibly resized or recompressed\n" +
		"- similar: the same image with crops, overlays or edits\n" +
		"- different: another image (other character, scene or cover)\n\n" +
		"Answer with exactly these lines:\n" +
		"SIMILARITY: [identical/similar/different]\n" +
		"REASON: [one sentence]\n")

	return b.String()
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	r := []rune(s)

	return string(r[:n]) + "…"
}
