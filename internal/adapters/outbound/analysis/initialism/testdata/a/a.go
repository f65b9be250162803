package a

import "strings"

type userRecord struct {
	Id   int // want `Id should be ID`
	name string
}

func parseUrl(rawUrl string) string { // want `parseUrl should be parseURL` `rawUrl should be rawURL`
	return strings.TrimSpace(rawUrl)
}

func ServeHttp() {} // want `ServeHttp should be ServeHTTP`

func (r userRecord) recordId() int { // want `recordId should be recordID`
	return r.Id
}

func lookup(ids []int) int {
	for _, userId := range ids { // want `userId should be userID`
		return userId
	}
	return 0
}

func shadowed() string {
	apiUrl := "a" // want `apiUrl should be apiURL`
	{
		apiURL := "b"
		return apiURL + apiUrl
	}
}

func caller() string {
	return parseUrl(" x ")
}

var cachedUrls = []string{parseUrl("y")} // want `cachedUrls should be cachedURLs`
