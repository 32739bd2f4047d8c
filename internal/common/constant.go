package common

// DefaultTimezone is the site-local IANA zone applied when configuration
// does not override it. Calendar-day rules (duplicate suppression, no-show
// cutoffs) are evaluated in this zone.
const DefaultTimezone = "Asia/Bangkok"
