package utils

import (
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/pkg/errors"
)

//URLJoin joins urls with '/'
func URLJoin(urls ...string) string {
	u, err := url.Parse(urls[0])
	if err != nil || u.Host == "" {
		return strings.Join(urls, "/")
	}
	u.Path = path.Join(u.Path, path.Join(urls[1:]...))
	return u.String()
}

//ValidateURL checks the url, returns an error naming the setting
func ValidateURL(urlStr, settingName string) (string, error) {
	if urlStr == "" {
		return "", errors.New("No " + settingName + " setting provided")
	}
	u, err := url.Parse(urlStr)
	if err != nil {
		return "", errors.Wrap(err, "Can't parse url "+urlStr)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", errors.Errorf("Wrong %s: %s", settingName, urlStr)
	}
	return u.String(), nil
}

//ErrWrongHTTPCall indicates failure due wrong http call
var ErrWrongHTTPCall = errors.New("Wrong http call")

//ValidateResponse returns error if code is not in [200, 299]
func ValidateResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return nil
	}
	bodyBytes, _ := ioutil.ReadAll(resp.Body)
	trimS := ""
	if len(bodyBytes) > 100 {
		bodyBytes = bodyBytes[:100]
		trimS = "..."
	}
	msg := fmt.Sprintf("Wrong response code from server. Code: %d\n%s",
		resp.StatusCode, strings.TrimSpace(string(bodyBytes))+trimS)
	if resp.StatusCode == http.StatusBadRequest {
		return errors.Wrap(ErrWrongHTTPCall, msg)
	}
	return errors.New(msg)
}

//URLToLog hides the password part of the URL
func URLToLog(link string) string {
	u, err := url.Parse(link)
	if err == nil {
		if u.User != nil {
			u.User = url.UserPassword(u.User.Username(), "xxxx")
		}
		return u.String()
	}
	return link
}
