package utils

import "net/url"

// BuildReferralLink appends the referral code as a "ref" query parameter to
// the configured checkout URL. Returns "" when no base URL is configured or
// it does not parse.
func BuildReferralLink(checkoutURL, code string) string {
	if checkoutURL == "" {
		return ""
	}
	u, err := url.Parse(checkoutURL)
	if err != nil {
		return ""
	}
	q := u.Query()
	q.Set("ref", code)
	u.RawQuery = q.Encode()
	return u.String()
}
