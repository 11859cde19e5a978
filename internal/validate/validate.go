package validate

import (
	"fmt"
	"slices"

	"hypercastle/internal/parser"
	"hypercastle/internal/render"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeDefaultedParameter = "defaulted_parameter"
	codeUnknownClass       = "unknown_class"
	codeUncoloredClass     = "uncolored_class"
	codeUnmatchedAnimation = "unmatched_animation"
	codeZeroDuration       = "zero_duration"
	codeKeyframeGap        = "keyframe_gap"
)

type Issue struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Class    string   `json:"class,omitempty"`
	FilePath string   `json:"file_path,omitempty"`
}

type Report struct {
	Issues []Issue `json:"issues"`
}

// HasErrors reports whether any issue has error severity.
func (r *Report) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Run checks a parsed document for inconsistencies the parser accepted
// leniently.
func Run(doc *parser.Document) (*Report, error) {
	if doc == nil || doc.Model == nil {
		return nil, fmt.Errorf("document is required")
	}
	m := doc.Model

	issues := make([]Issue, 0)
	for _, name := range doc.DefaultedParameters {
		issues = append(issues, Issue{
			Severity: SeverityWarn,
			Code:     codeDefaultedParameter,
			Message:  fmt.Sprintf("script parameter %s defaulted to 0", name),
		})
	}

	classes, counts := gridClasses(m)
	for _, class := range classes {
		if !slices.Contains(m.ClassIDs, class) {
			issues = append(issues, classIssue(SeverityWarn, codeUnknownClass, class,
				fmt.Sprintf("%d cells use a class missing from classIds; their depth is %d", counts[class], m.Depth(class))))
		}
		if _, ok := m.BaseColor(class); !ok {
			issues = append(issues, classIssue(SeverityWarn, codeUncoloredClass, class,
				"no style rule colors this class"))
		}
	}

	for _, anim := range m.Animations {
		if anim.Duration <= 0 {
			issues = append(issues, classIssue(SeverityError, codeZeroDuration, anim.Class,
				fmt.Sprintf("animation %q has duration %gs and never advances", anim.Name, anim.Duration)))
		}
		if counts[anim.Class] == 0 {
			issues = append(issues, classIssue(SeverityWarn, codeUnmatchedAnimation, anim.Class,
				fmt.Sprintf("animation %q targets a class with no grid cells", anim.Name)))
		}
	}

	for _, track := range keyframeTracks(m.Keyframes) {
		if !hasStart(m.Keyframes, track) {
			issues = append(issues, Issue{
				Severity: SeverityWarn,
				Code:     codeKeyframeGap,
				Message:  fmt.Sprintf("keyframes %q have no 0%% stop", track),
			})
		}
	}

	for i := range issues {
		issues[i].FilePath = doc.SourceFile
	}
	return &Report{Issues: issues}, nil
}

// gridClasses returns the distinct non-empty classes in grid order with their
// cell counts.
func gridClasses(m *render.Model) ([]rune, map[rune]int) {
	var order []rune
	counts := make(map[rune]int)
	for _, class := range m.Classes {
		if class == 0 {
			continue
		}
		if counts[class] == 0 {
			order = append(order, class)
		}
		counts[class]++
	}
	return order, counts
}

func keyframeTracks(keyframes []render.Keyframe) []string {
	var tracks []string
	for _, kf := range keyframes {
		if !slices.Contains(tracks, kf.Track) {
			tracks = append(tracks, kf.Track)
		}
	}
	return tracks
}

func hasStart(keyframes []render.Keyframe, track string) bool {
	for _, kf := range keyframes {
		if kf.Track == track && kf.Percentage == 0 {
			return true
		}
	}
	return false
}

func classIssue(severity Severity, code string, class rune, message string) Issue {
	return Issue{
		Severity: severity,
		Code:     code,
		Message:  message,
		Class:    string(class),
	}
}
