package router

import (
	"ai-studypartner-be/pkg/agent/classifier"
	"ai-studypartner-be/pkg/store"
)

// Route maps an intent label and the sticky override to a generator mode.
//
// A set sticky override wins outright; that is how a freshly set quiz routes
// the user's next message into the grader no matter what the classifier says.
// Unknown labels land on the query generator. Pure and total.
func Route(label string, stickyNextMode string) string {
	if stickyNextMode != "" {
		return stickyNextMode
	}

	switch label {
	case classifier.LabelQuiz:
		return store.ModeQuizSetter
	case classifier.LabelSimplify:
		return store.ModeSimplify
	case classifier.LabelSummarize:
		return store.ModeSummarize
	case classifier.LabelAdvisor:
		return store.ModeAdvisor
	case classifier.LabelQuery:
		return store.ModeQuery
	default:
		return store.ModeQuery
	}
}
