// Command framed is the photo frame appliance CLI. "framed show" runs the
// slideshow daemon, "framed convert" runs the video conversion daemon, and
// "framed status" reports on both.
package main
