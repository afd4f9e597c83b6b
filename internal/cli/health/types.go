// Package health decodes the responses of the status API.
package health

// Response is the envelope every status endpoint returns.
type Response struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Error     string `json:"error,omitempty"`
}

// Liveness is the body of /health.
type Liveness struct {
	Response
	Data struct {
		Service string `json:"service"`
	} `json:"data"`
}

// Readiness is the body of /health/ready.
type Readiness struct {
	Response
	Data []Check `json:"data"`
}

// Check is the result of one readiness check.
type Check struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency"`
}

// Headers implements output.TableRenderer.
func (r Readiness) Headers() []string {
	return []string{"Check", "Status", "Latency", "Error"}
}

// Rows implements output.TableRenderer.
func (r Readiness) Rows() [][]string {
	rows := make([][]string, 0, len(r.Data))
	for _, c := range r.Data {
		rows = append(rows, []string{c.Name, c.Status, c.Latency, c.Error})
	}
	return rows
}
