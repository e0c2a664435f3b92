package build

import (
	"honours/internal/pipeline"
)

// Task names, as accepted on the command line.
const (
	TaskClean          = "clean"
	TaskDownloadData   = "download-data"
	TaskScripts        = "scripts"
	TaskStyles         = "styles"
	TaskTemplates      = "templates"
	TaskMinifyJS       = "minify-js"
	TaskMinifyCSS      = "minify-css"
	TaskCompressImages = "compress-images"
	TaskCopyMisc       = "copy-misc-files"
	TaskFinaliseHTML   = "finalise-html"
)

// TaskNames lists every task in build order.
func TaskNames() []string {
	return []string{
		TaskClean, TaskDownloadData,
		TaskScripts, TaskStyles, TaskTemplates,
		TaskMinifyJS, TaskMinifyCSS, TaskCompressImages, TaskCopyMisc,
		TaskFinaliseHTML,
	}
}

// BuildGraph is the production build. Each stage depends on the whole
// previous stage:
//
//	clean, download-data
//	scripts, styles, templates
//	minify-js, minify-css, compress-images, copy-misc-files
//	finalise-html
func BuildGraph(s *Steps) (*pipeline.Graph, error) {
	prep := []string{TaskClean, TaskDownloadData}
	pre := []string{TaskScripts, TaskStyles, TaskTemplates}
	opt := []string{TaskMinifyJS, TaskMinifyCSS, TaskCompressImages, TaskCopyMisc}

	return pipeline.NewGraph(
		pipeline.Task{Name: TaskClean, Run: s.Assets.Clean},
		pipeline.Task{Name: TaskDownloadData, Run: s.DownloadData},

		pipeline.Task{Name: TaskScripts, Deps: prep, Run: s.Scripts},
		pipeline.Task{Name: TaskStyles, Deps: prep, Run: s.Styles},
		pipeline.Task{Name: TaskTemplates, Deps: prep, Run: s.Templates},

		pipeline.Task{Name: TaskMinifyJS, Deps: pre, Run: s.Assets.MinifyJS},
		pipeline.Task{Name: TaskMinifyCSS, Deps: pre, Run: s.Assets.MinifyCSS},
		pipeline.Task{Name: TaskCompressImages, Deps: pre, Run: s.Assets.CompressImages},
		pipeline.Task{Name: TaskCopyMisc, Deps: pre, Run: s.Assets.CopyMisc},

		pipeline.Task{Name: TaskFinaliseHTML, Deps: opt, Run: s.Assets.FinaliseHTML},
	)
}

// ServeGraph prepares .tmp for the dev server: data first, then the three
// compile steps side by side.
func ServeGraph(s *Steps) (*pipeline.Graph, error) {
	data := []string{TaskDownloadData}
	return pipeline.NewGraph(
		pipeline.Task{Name: TaskDownloadData, Run: s.DownloadData},
		pipeline.Task{Name: TaskStyles, Deps: data, Run: s.Styles},
		pipeline.Task{Name: TaskTemplates, Deps: data, Run: s.Templates},
		pipeline.Task{Name: TaskScripts, Deps: data, Run: s.Scripts},
	)
}
