package cmdapp

import "github.com/labstack/gommon/color"

const bannerHead = `
         _             
  ___ __(_)__ ____ ___ 
 (_-</ / / _ '/ _ \/ _ \
/___/_/_/\_, /_//_/\_, /
        /___/     /___/ 
`

//PrintBanner prints the service name banner with version and source link
func PrintBanner(name, version string) {
	cl := color.New()
	cl.Printf(bannerHead+"%s | v: %s\n\n%s\n"+
		"________________________________________________________\n\n",
		cl.Bold(name), cl.Red(version), cl.Green("github.com/setusign/signgo"))
}
