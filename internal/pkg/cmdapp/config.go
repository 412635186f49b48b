package cmdapp

import (
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

//Config is a viper based application config
var Config = viper.New()

//Log is applications logger
var Log = logrus.New()

//GetStrings returns a list setting. A single env value may hold several items separated by ','
func GetStrings(key string) []string {
	var res []string
	for _, s := range Config.GetStringSlice(key) {
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				res = append(res, p)
			}
		}
	}
	return res
}
