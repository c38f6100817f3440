package html

// pageCSS styles the report page; embedded so the document is self-contained.
const pageCSS = `
body { font-family: system-ui, sans-serif; margin: 2rem auto; max-width: 1240px; color: #212121; }
h1 { font-size: 1.6rem; }
h2 { font-size: 1.2rem; margin-top: 2rem; }
.summary { display: flex; gap: 1rem; flex-wrap: wrap; }
.card { background: #f5f5f5; border-radius: 6px; padding: 1rem 1.5rem; display: flex; flex-direction: column; }
.card .value { font-size: 1.4rem; font-weight: 600; }
.card .label { font-size: 0.8rem; color: #616161; }
.chart { max-width: 100%; border: 1px solid #e0e0e0; }
table { border-collapse: collapse; margin-top: 0.5rem; }
th, td { border: 1px solid #e0e0e0; padding: 0.3rem 0.8rem; text-align: right; }
th { background: #fafafa; }
td:first-child, th:first-child { text-align: left; }
`
