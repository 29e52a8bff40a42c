package server

// indexHTML is the upload page served at GET /. The form posts the chosen
// file to /render with the selected format and style as query parameters.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>blockmondrian</title>
<style>
body { font-family: sans-serif; max-width: 40em; margin: 2em auto; color: #222; }
fieldset { border: 1px solid #ccc; margin-bottom: 1em; }
label { display: block; margin: .4em 0; }
</style>
</head>
<body>
<h1>blockmondrian</h1>
<p>Upload a values file (one transaction value in BTC per line) to draw it as a mosaic.</p>
<form id="upload" method="post" enctype="multipart/form-data" action="/render">
<fieldset>
<label>File <input type="file" name="file" required></label>
<label>Format
<select id="format">
<option>svg</option><option>png</option><option>pdf</option><option>html</option><option>json</option>
</select></label>
<label>Style
<select id="style"><option>solid</option><option>spectrum</option></select></label>
</fieldset>
<button type="submit">Render</button>
</form>
<p>Or render a block directly: <code>/blocks/{height}/render.svg</code>,
and download its values from <code>/blocks/{height}/values</code>.</p>
<script>
document.getElementById("upload").addEventListener("submit", function () {
  var f = document.getElementById("format").value;
  var s = document.getElementById("style").value;
  this.action = "/render?format=" + encodeURIComponent(f) + "&style=" + encodeURIComponent(s);
});
</script>
</body>
</html>
`
