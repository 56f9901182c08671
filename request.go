package apicall

// Request records what a CallBuilder handed to its Dispatcher.
type Request struct {
	Verb    string         // Lowercase verb from the endpoint descriptor, e.g. "get"
	URL     string         // Final URL, including the query string built for get calls
	Body    map[string]any // JSON payload; nil for get calls
	Headers map[string]string
}
