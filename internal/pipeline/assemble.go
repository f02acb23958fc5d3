// =============================================================================
// assemble.go - Digest Assembly
// =============================================================================
//
// Folds the per-category fragments and rendered counts into the complete,
// self-contained HTML page: inline CSS, inline JS, no external assets, so the
// file renders standalone in any browser and on any static host.
//
// The only non-deterministic content is the date/time pair injected by the
// caller; everything else is a pure function of the fragments and counts.
//
// =============================================================================
package pipeline

import (
	"bytes"
	"fmt"
	"text/template"
	"time"
)

// digestData feeds the page template. Fragment fields hold pre-rendered HTML.
type digestData struct {
	Date string
	Time string

	NewsCount     int
	ArxivCount    int
	PlayersCount  int
	ResearchCount int
	TotalSources  int

	NewsSection     string
	ArxivSection    string
	PlayersSection  string
	ResearchSection string
}

var digestTemplate = template.Must(template.New("digest").Parse(digestPage))

// AssembleDigest builds the final HTML document. A category missing from
// fragments renders its own placeholder, never a blank section; a stats key
// missing from counts renders 0. The assembled document is structurally
// verified before being returned, so a broken page is an error here and
// nothing downstream ever writes corrupt HTML.
func AssembleDigest(fragments map[Category]string, counts map[Category]int, now time.Time) (string, error) {
	data := digestData{
		Date:            now.Format("January 02, 2006"),
		Time:            now.Format("15:04"),
		NewsCount:       counts[CategoryNews],
		ArxivCount:      counts[CategoryArxiv],
		PlayersCount:    counts[CategoryPlayers],
		ResearchCount:   counts[CategoryResearch],
		TotalSources:    len(sourceRegistry),
		NewsSection:     fragmentOrPlaceholder(fragments, CategoryNews),
		ArxivSection:    fragmentOrPlaceholder(fragments, CategoryArxiv),
		PlayersSection:  fragmentOrPlaceholder(fragments, CategoryPlayers),
		ResearchSection: fragmentOrPlaceholder(fragments, CategoryResearch),
	}

	var buf bytes.Buffer
	if err := digestTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("digest template: %w", err)
	}

	page := buf.String()
	if err := validateDigest(page); err != nil {
		return "", err
	}
	return page, nil
}

// fragmentOrPlaceholder looks up a category's fragment, falling back to the
// same placeholder the formatter uses for empty input.
func fragmentOrPlaceholder(fragments map[Category]string, cat Category) string {
	if frag, ok := fragments[cat]; ok && frag != "" {
		return frag
	}
	spec, _ := specFor(cat)
	return spec.Placeholder
}

// digestPage is the fixed page skeleton. Section order mirrors categorySpecs.
const digestPage = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Quantum Digest - {{.Date}}</title>
    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
            line-height: 1.6;
            color: #1a1a1a;
            background-color: #ffffff;
            font-size: 16px;
        }

        .container {
            max-width: 680px;
            margin: 0 auto;
            padding: 0 20px;
        }

        .header {
            background: #000;
            color: white;
            padding: 40px 0;
            margin-bottom: 40px;
        }

        .header h1 {
            font-size: 2.5rem;
            font-weight: 700;
            margin-bottom: 8px;
            letter-spacing: -0.02em;
        }

        .header .subtitle {
            font-size: 1.1rem;
            color: #999;
            font-weight: 400;
        }

        .stats {
            background: #f8f9fa;
            border: 1px solid #e9ecef;
            border-radius: 8px;
            padding: 20px;
            margin-bottom: 40px;
        }

        .stats h3 {
            font-size: 1.1rem;
            font-weight: 600;
            margin-bottom: 12px;
            color: #1a1a1a;
        }

        .stats p {
            font-size: 0.95rem;
            color: #666;
            line-height: 1.5;
        }

        .section {
            margin-bottom: 50px;
        }

        .section-header {
            cursor: pointer;
            user-select: none;
            display: flex;
            align-items: center;
            justify-content: space-between;
            padding: 16px 0;
            border-bottom: 2px solid #00d084;
            margin-bottom: 24px;
            transition: all 0.3s ease;
        }

        .section-header:hover {
            background-color: #f8f9fa;
            margin: 0 -20px 24px -20px;
            padding: 16px 20px;
            border-radius: 8px;
        }

        .section h2 {
            font-size: 1.8rem;
            font-weight: 700;
            color: #1a1a1a;
            margin: 0;
            letter-spacing: -0.01em;
        }

        .toggle-icon {
            font-size: 1.5rem;
            color: #00d084;
            font-weight: bold;
            transition: transform 0.3s ease;
        }

        .section-content {
            transition: all 0.3s ease;
            overflow: hidden;
        }

        .section-content.collapsed {
            max-height: 0;
            opacity: 0;
            margin-bottom: 0;
        }

        .section-content.expanded {
            max-height: none;
            opacity: 1;
        }

        .article {
            margin-bottom: 32px;
            padding-bottom: 32px;
            border-bottom: 1px solid #e9ecef;
        }

        .article:last-child {
            border-bottom: none;
            margin-bottom: 0;
            padding-bottom: 0;
        }

        .article h3 {
            font-size: 1.4rem;
            font-weight: 600;
            line-height: 1.3;
            margin-bottom: 12px;
            color: #1a1a1a;
            letter-spacing: -0.01em;
        }

        .article h3 a {
            color: #1a1a1a;
            text-decoration: none;
            transition: color 0.2s ease;
        }

        .article h3 a:hover {
            color: #00d084;
        }

        .article .meta {
            font-size: 0.9rem;
            color: #666;
            margin-bottom: 16px;
            font-weight: 400;
        }

        .article .meta .author {
            color: #00d084;
            font-weight: 500;
        }

        .article .meta .date {
            color: #999;
        }

        .article .content {
            font-size: 1rem;
            line-height: 1.7;
            color: #333;
        }

        .footer {
            border-top: 1px solid #e9ecef;
            padding: 40px 0;
            text-align: center;
            color: #666;
            font-size: 0.9rem;
            margin-top: 60px;
        }

        .footer p {
            margin-bottom: 8px;
        }

        a {
            color: #00d084;
            text-decoration: none;
        }

        a:hover {
            text-decoration: underline;
        }

        @media (max-width: 768px) {
            .container {
                padding: 0 16px;
            }

            .header h1 {
                font-size: 2rem;
            }

            .section h2 {
                font-size: 1.5rem;
            }

            .article h3 {
                font-size: 1.2rem;
            }
        }
    </style>
</head>
<body>
    <header class="header">
        <div class="container">
            <h1>🚀 Quantum Digest</h1>
            <div class="subtitle">Daily Quantum Computing Research &amp; News • {{.Date}} • {{.Time}}</div>
        </div>
    </header>

    <main class="container">
        <div class="stats">
            <h3>📊 Today's Data Collection</h3>
            <p>
                <strong>News items:</strong> {{.NewsCount}} articles gathered<br>
                <strong>Technology papers:</strong> {{.ArxivCount}} papers fetched<br>
                <strong>Company papers:</strong> {{.PlayersCount}} papers from major players<br>
                <strong>Highlighted papers:</strong> {{.ResearchCount}} papers collected<br>
                <strong>Total sources:</strong> {{.TotalSources}} data feeds processed
            </p>
        </div>

        <section class="section">
            <div class="section-header">
                <h2>📰 News Items</h2>
                <span class="toggle-icon">−</span>
            </div>
            <div class="section-content expanded">
{{.NewsSection}}
            </div>
        </section>

        <section class="section">
            <div class="section-header">
                <h2>📄 Technology Papers</h2>
                <span class="toggle-icon">−</span>
            </div>
            <div class="section-content expanded">
{{.ArxivSection}}
            </div>
        </section>

        <section class="section">
            <div class="section-header">
                <h2>🏢 Company Papers</h2>
                <span class="toggle-icon">−</span>
            </div>
            <div class="section-content expanded">
{{.PlayersSection}}
            </div>
        </section>

        <section class="section">
            <div class="section-header">
                <h2>📚 Highlighted Papers</h2>
                <span class="toggle-icon">−</span>
            </div>
            <div class="section-content expanded">
{{.ResearchSection}}
            </div>
        </section>
    </main>

    <footer class="footer">
        <div class="container">
            <p>Generated automatically by Quantum Digest</p>
            <p>Sources: arXiv, Google News, Research Databases</p>
            <p><em>Updated daily with the latest quantum computing developments</em></p>
        </div>
    </footer>

    <script>
        document.addEventListener('DOMContentLoaded', function() {
            var sections = document.querySelectorAll('.section');
            sections.forEach(function(section) {
                var header = section.querySelector('.section-header');
                var content = section.querySelector('.section-content');
                var icon = section.querySelector('.toggle-icon');
                if (!header || !content || !icon) {
                    return;
                }

                content.classList.add('expanded');
                icon.textContent = '−';

                header.addEventListener('click', function() {
                    var isExpanded = content.classList.contains('expanded');
                    if (isExpanded) {
                        content.classList.remove('expanded');
                        content.classList.add('collapsed');
                        icon.textContent = '+';
                    } else {
                        content.classList.remove('collapsed');
                        content.classList.add('expanded');
                        icon.textContent = '−';
                    }
                });
            });

            var toggleAllBtn = document.createElement('button');
            toggleAllBtn.textContent = 'Collapse All';
            toggleAllBtn.setAttribute('style', 'position: fixed; top: 20px; right: 20px; background: #00d084; color: white; border: none; padding: 10px 15px; border-radius: 5px; cursor: pointer; font-size: 14px; z-index: 1000;');

            toggleAllBtn.addEventListener('click', function() {
                var allExpanded = Array.prototype.every.call(sections, function(section) {
                    return section.querySelector('.section-content').classList.contains('expanded');
                });

                sections.forEach(function(section) {
                    var content = section.querySelector('.section-content');
                    var icon = section.querySelector('.toggle-icon');
                    if (allExpanded) {
                        content.classList.remove('expanded');
                        content.classList.add('collapsed');
                        icon.textContent = '+';
                    } else {
                        content.classList.remove('collapsed');
                        content.classList.add('expanded');
                        icon.textContent = '−';
                    }
                });

                toggleAllBtn.textContent = allExpanded ? 'Expand All' : 'Collapse All';
            });

            document.body.appendChild(toggleAllBtn);
        });
    </script>
</body>
</html>
`
