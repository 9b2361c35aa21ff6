package bubbletea

// RenderContent exports renderContent for testing.
func RenderContent(m Model) string {
	return m.renderContent()
}

// SetRunningWithCancel puts the model in a running state with cancel as
// the in-flight exchange's cancel function.
func SetRunningWithCancel(m Model, cancel func()) Model {
	m.running = true
	m.cancel = cancel
	return m
}
