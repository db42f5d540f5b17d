package classify

// Package classify turns the raw text of an uploaded link file into ordered,
// classified link records. Classification is a pure function of the URL text;
// no network access happens here.
