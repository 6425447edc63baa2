package livereload

import (
	"bytes"
	"html/template"
)

var clientScript = template.Must(template.New("livereload").Parse(`<script data-frontnote-livereload>
(function () {
  var url = (location.protocol === "https:" ? "wss://" : "ws://") + location.host + {{ .Path }};
  function connect(retry) {
    var ws = new WebSocket(url);
    ws.onmessage = function (event) {
      var msg = JSON.parse(event.data);
      if (msg.type === "connected" && retry) {
        location.reload();
      }
      if (msg.type === "reload") {
        location.reload();
      }
    };
    ws.onclose = function () {
      setTimeout(function () { connect(true); }, 1000);
    };
  }
  connect(false);
})();
</script>`))

// Script returns the snippet injected into served pages.
func Script() []byte {
	var buf bytes.Buffer
	if err := clientScript.Execute(&buf, struct{ Path string }{Path}); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// Inject inserts the client script before the closing body tag, or at
// the end of page when it has none.
func Inject(page []byte) []byte {
	script := Script()
	i := bytes.LastIndex(bytes.ToLower(page), []byte("</body>"))
	if i < 0 {
		return append(append(make([]byte, 0, len(page)+len(script)), page...), script...)
	}

	out := make([]byte, 0, len(page)+len(script))
	out = append(out, page[:i]...)
	out = append(out, script...)
	out = append(out, page[i:]...)
	return out
}
