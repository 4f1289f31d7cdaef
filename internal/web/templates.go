package web

import (
	"html/template"
)

const summaryPage = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{ .Title }}</title>
    <script src="https://cdn.tailwindcss.com"></script>
    <script src="https://cdn.tailwindcss.com?plugins=typography"></script>
</head>
<body class="bg-gray-50">
    <div class="max-w-4xl mx-auto p-4 sm:p-6 lg:p-8">
        {{ if .Error }}
            <div class="bg-red-50 border-l-4 border-red-400 p-4 mb-6 rounded">
                <p class="text-sm text-red-700">{{ .Error }}</p>
            </div>
        {{ else }}
            <h1 class="text-2xl font-bold text-gray-900 mb-4">{{ .Title }}</h1>
            <div class="text-gray-600 mb-6">
                Source: <a href="{{ .URL }}" class="text-indigo-600 hover:text-indigo-900 transition-colors">{{ .URL }}</a>
            </div>
            <div class="bg-white rounded-lg shadow-sm p-6">
                <div class="prose prose-slate max-w-none prose-headings:font-semibold prose-a:text-indigo-600">
                    {{ .Summary }}
                </div>
            </div>
        {{ end }}
    </div>
</body>
</html>`

const listPage = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Recent Summaries</title>
    <script src="https://cdn.tailwindcss.com"></script>
    <script src="https://cdn.tailwindcss.com?plugins=typography"></script>
    <script>
        async function deleteSummary(encodedUrl, row) {
            try {
                const response = await fetch('/delete/' + encodedUrl, {
                    method: 'DELETE'
                });
                if (response.ok) {
                    row.remove();
                }
            } catch (error) {
                console.error('Error:', error);
            }
        }
    </script>
</head>
<body class="bg-gray-50">
    <div class="max-w-4xl mx-auto p-4 sm:p-6 lg:p-8">
        <h1 class="text-2xl font-bold text-gray-900 mb-6">Recent Summaries</h1>
        <div class="bg-white rounded-lg shadow overflow-hidden">
            <div class="overflow-x-auto">
                <table class="min-w-full divide-y divide-gray-200">
                    <thead class="bg-gray-50">
                        <tr>
                            <th scope="col" class="px-6 py-3 text-left text-xs font-medium text-gray-500 uppercase tracking-wider">Date</th>
                            <th scope="col" class="px-6 py-3 text-left text-xs font-medium text-gray-500 uppercase tracking-wider">Article</th>
                            <th scope="col" class="px-6 py-3 text-left text-xs font-medium text-gray-500 uppercase tracking-wider"></th>
                        </tr>
                    </thead>
                    <tbody class="bg-white divide-y divide-gray-200">
                        {{ range $i, $row := .Rows }}
                        <tr class="hover:bg-gray-50 transition-colors" id="row-{{ $i }}">
                            <td class="px-6 py-4 whitespace-nowrap text-sm text-gray-500">{{ $row.Timestamp }}</td>
                            <td class="px-6 py-4 text-sm">
                                <a href="/{{ $row.EncodedURL }}" class="text-indigo-600 hover:text-indigo-900">{{ $row.Title }}</a>
                            </td>
                            <td class="px-6 py-4 whitespace-nowrap text-right text-sm font-medium">
                                <button onclick="deleteSummary('{{ $row.EncodedURL }}', document.getElementById('row-{{ $i }}'))"
                                        class="text-red-600 hover:text-red-900 transition-colors">
                                    Delete
                                </button>
                            </td>
                        </tr>
                        {{ end }}
                    </tbody>
                </table>
            </div>
        </div>
    </div>
</body>
</html>`

var summaryTemplate = template.Must(template.New("summary").Parse(summaryPage))
var listTemplate = template.Must(template.New("list").Parse(listPage))

type summaryView struct {
	Title   string
	URL     string
	Summary template.HTML
	Error   string
}

type listRow struct {
	EncodedURL string
	Timestamp  string
	Title      string
}

type listView struct {
	Rows []listRow
}
