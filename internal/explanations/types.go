package explanations

// saveSubdirs maps explainer names to the output subdirectory of their meta-explanations.
var saveSubdirs = map[string]string{
	"graphgradcam":   "graph_gradcam",
	"graphgradcampp": "graph_gradcampp",
	"gnnexplainer":   "gnn_explainer",
	"graphlrp":       "graph_lrp",
	"gradcam":        "gradcam",
	"gradcampp":      "gradcampp",
}

// SaveSubdir returns the output subdirectory for an explanation type.
func SaveSubdir(explanationType string) (string, bool) {
	dir, ok := saveSubdirs[explanationType]
	return dir, ok
}
