package pages

import "github.com/mark3labs/stepwise/internal/page"

type pageBase struct {
	page.Base
	deps Deps
}
