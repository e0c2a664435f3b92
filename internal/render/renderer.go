package render

import "context"

type Renderer interface {
	RenderMainPage(ctx context.Context, page MainPage) ([]byte, error)
}
