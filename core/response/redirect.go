package response

import "net/http"

// HeaderLocation is echoed on JSON redirects so fetch-based clients can follow them.
const HeaderLocation = "X-Redirect-Location"

// Redirect responds 302 Found.
func Redirect(url string) Response {
	return RedirectWithStatus(url, http.StatusFound)
}

// RedirectSeeOther responds 303, used after form posts.
func RedirectSeeOther(url string) Response {
	return RedirectWithStatus(url, http.StatusSeeOther)
}

// RedirectWithStatus redirects with a 3xx status; anything else becomes 302.
// Requests that accept only JSON get the target in HeaderLocation with 200
// instead, since browsers' fetch follows redirects opaquely.
func RedirectWithStatus(url string, status int) Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		if status < 300 || status >= 400 {
			status = http.StatusFound
		}
		if wantsJSON(r) {
			w.Header().Set(HeaderLocation, url)
			return JSON(map[string]string{"redirect": url})(w, r)
		}
		http.Redirect(w, r, url, status)
		return nil
	}
}

func wantsJSON(r *http.Request) bool {
	return r.Header.Get("Accept") == "application/json"
}
